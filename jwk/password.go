package jwk

import (
	"crypto/sha256"
	"fmt"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
)

// PasswordKey wraps a shared password/passphrase for PBES2 key
// management (RFC 7518 section 4.8). It has no RFC 7517 "kty" (PBES2
// passwords are never serialized as a standalone JWK), so it does not
// implement Key, nor the capability interfaces, which all embed Key.
// The jwt package calls its CreateKeyWrapper/CreateKeyUnwrapper
// methods directly.
type PasswordKey struct {
	Password []byte
	KeyID    string
}

// Thumbprint returns a SHA-256 digest of the password bytes. This is not
// an RFC 7638 JWK thumbprint (PasswordKey has no canonical JWK form).
func (p *PasswordKey) Thumbprint() (string, error) {
	sum := sha256.Sum256(p.Password)
	return base64url.EncodeToString(sum[:]), nil
}

func (p *PasswordKey) ID() string { return p.KeyID }

// CreateKeyWrapper creates a jwe.KeyWrapper for PBES2-HS256+A128KW,
// PBES2-HS384+A192KW, or PBES2-HS512+A256KW.
func (p *PasswordKey) CreateKeyWrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyWrapper, error) {
	if info, ok := jwa.LookupKeyManagement(alg); !ok || info.Family != "PBES2" {
		return nil, fmt.Errorf("jwk: password key cannot create a key wrapper for %s", alg)
	}
	return jwe.PBES2Wrapper(alg, p.Password)
}

// CreateKeyUnwrapper creates a jwe.KeyUnwrapper for the PBES2 family,
// given the p2s/p2c parameters read from the JWE header.
func (p *PasswordKey) CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm, p2s []byte, p2c int) (jwe.KeyUnwrapper, error) {
	return jwe.PBES2Unwrapper(alg, p.Password, p2s, p2c)
}
