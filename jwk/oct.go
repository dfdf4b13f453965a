package jwk

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jws"
)

// SymmetricKey implements "kty": "oct", RFC 7517 appendix A.3. The raw
// key bytes serve as HMAC secret, shared content encryption key or key
// encryption key, depending on the algorithm they are used with.
type SymmetricKey struct {
	KeyDescription
	Bytes []byte
}

func (s *SymmetricKey) Type() KeyType { return KeyTypeOct }

type symmetricKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	K    string  `json:"k"`
}

func (s *SymmetricKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(symmetricKeyJSONWrapper{
		KeyDescription: s.KeyDescription,
		Type:           s.Type(),
		K:              base64url.EncodeToString(s.Bytes),
	})
}

func (s *SymmetricKey) UnmarshalJSON(data []byte) error {
	var w symmetricKeyJSONWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	bytes, err := base64url.DecodeString(w.K)
	if err != nil {
		return fmt.Errorf("jwk: failed to decode oct key bytes: %w", err)
	}

	s.KeyDescription = w.KeyDescription
	s.Bytes = bytes
	return nil
}

// Thumbprint implements RFC 7638 for symmetric keys: the canonical JSON
// object has exactly the members "k" and "kty", in that lexicographic
// order.
func (s *SymmetricKey) Thumbprint() (string, error) {
	canonical := fmt.Sprintf(`{"k":%q,"kty":"oct"}`, base64url.EncodeToString(s.Bytes))
	sum := sha256.Sum256([]byte(canonical))
	return base64url.EncodeToString(sum[:]), nil
}

// CreateSigner creates a jws.SignerVerifier for HS256/384/512 using this
// key's bytes as the HMAC secret.
func (s *SymmetricKey) CreateSigner(alg jwa.SignatureAlgorithm) (jws.Signer, error) {
	return jws.HSSignerVerifier(alg, s.Bytes)
}

// CreateVerifier creates a jws.SignerVerifier for HS256/384/512 using
// this key's bytes as the HMAC secret.
func (s *SymmetricKey) CreateVerifier(alg jwa.SignatureAlgorithm) (jws.Verifier, error) {
	return jws.HSSignerVerifier(alg, s.Bytes)
}

// CreateKeyWrapper creates a jwe.KeyWrapper for "dir", A128KW/A192KW/
// A256KW, or A128GCMKW/A192GCMKW/A256GCMKW using this key's bytes as the
// shared key or key-encryption key.
func (s *SymmetricKey) CreateKeyWrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyWrapper, error) {
	switch alg {
	case jwa.Dir:
		return jwe.DirWrapper(s.Bytes), nil
	}
	if info, ok := jwa.LookupKeyManagement(alg); ok {
		switch info.Family {
		case "AESKW":
			return jwe.AESKWWrapper(alg, s.Bytes)
		case "AESGCMKW":
			return jwe.AESGCMKWWrapper(alg, s.Bytes)
		}
	}
	return nil, fmt.Errorf("jwk: symmetric key cannot create a key wrapper for %s", alg)
}

// CreateKeyUnwrapper creates a jwe.KeyUnwrapper for "dir", A128KW/
// A192KW/A256KW, or A128GCMKW/A192GCMKW/A256GCMKW. For the GCMKW family
// iv and tag must be supplied from the JWE header via
// CreateGCMKWUnwrapper instead, since UnwrapKey alone cannot carry them.
func (s *SymmetricKey) CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyUnwrapper, error) {
	switch alg {
	case jwa.Dir:
		return jwe.DirUnwrapper(s.Bytes), nil
	}
	if info, ok := jwa.LookupKeyManagement(alg); ok && info.Family == "AESKW" {
		return jwe.AESKWUnwrapper(alg, s.Bytes)
	}
	return nil, fmt.Errorf("jwk: symmetric key cannot create a key unwrapper for %s; use CreateGCMKWUnwrapper for the AES-GCM-KW family", alg)
}

// CreateGCMKWUnwrapper creates a jwe.KeyUnwrapper for A128GCMKW/
// A192GCMKW/A256GCMKW, given the iv and tag read from the JWE header's
// "iv"/"tag" members.
func (s *SymmetricKey) CreateGCMKWUnwrapper(alg jwa.KeyManagementAlgorithm, iv, tag []byte) (jwe.KeyUnwrapper, error) {
	return jwe.AESGCMKWUnwrapper(alg, s.Bytes, iv, tag)
}
