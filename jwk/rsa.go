package jwk

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jws"
)

// RSAPublicKey implements "kty": "RSA" public keys, RFC 7518 section 6.3.1.
type RSAPublicKey struct {
	KeyDescription
	*rsa.PublicKey
}

func (k *RSAPublicKey) Type() KeyType { return KeyTypeRSA }

type rsaPublicKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	N    string  `json:"n"`
	E    string  `json:"e"`
}

func (k *RSAPublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(rsaPublicKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		N:              base64url.EncodeToString(k.N.Bytes()),
		E:              base64url.EncodeToString(big.NewInt(int64(k.E)).Bytes()),
	})
}

func (k *RSAPublicKey) UnmarshalJSON(data []byte) error {
	var w rsaPublicKeyJSONWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeRSA {
		return fmt.Errorf("jwk: invalid key type: %s", w.Type)
	}

	pub, err := decodeRSAPublicKey(w.N, w.E)
	if err != nil {
		return err
	}

	k.KeyDescription = w.KeyDescription
	k.PublicKey = pub
	return nil
}

func decodeRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64url.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("jwk: invalid n value: %w", err)
	}
	eBytes, err := base64url.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("jwk: invalid e value: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

// Thumbprint implements RFC 7638 for RSA public keys: the canonical
// JSON object has exactly "e", "kty", "n", in that lexicographic order.
func (k *RSAPublicKey) Thumbprint() (string, error) {
	return rsaThumbprint(k.PublicKey)
}

func rsaThumbprint(pub *rsa.PublicKey) (string, error) {
	canonical := fmt.Sprintf(`{"e":%q,"kty":"RSA","n":%q}`,
		base64url.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		base64url.EncodeToString(pub.N.Bytes()))
	sum := sha256.Sum256([]byte(canonical))
	return base64url.EncodeToString(sum[:]), nil
}

// CreateVerifier creates a jws.Verifier for RS256/384/512 or PS256/384/
// 512 using this key.
func (k *RSAPublicKey) CreateVerifier(alg jwa.SignatureAlgorithm) (jws.Verifier, error) {
	info, ok := jwa.LookupSignature(alg)
	if !ok {
		return nil, fmt.Errorf("jwk: unknown signature algorithm %s", alg)
	}
	switch info.Family {
	case "RSA-PKCS1":
		return jws.RSVerifier(alg, k.PublicKey)
	case "RSA-PSS":
		return jws.PSVerifier(alg, k.PublicKey)
	default:
		return nil, fmt.Errorf("jwk: RSA key cannot create a verifier for %s", alg)
	}
}

// CreateKeyWrapper creates a jwe.KeyWrapper for RSA1_5 or RSA-OAEP/-256/
// -384/-512.
func (k *RSAPublicKey) CreateKeyWrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyWrapper, error) {
	return jwe.RSAWrapper(alg, k.PublicKey)
}

// RSAPrivateKey implements "kty": "RSA" private keys, RFC 7518 section
// 6.3.2. Used by the writer pipeline to sign and by the reader
// pipeline to unwrap RSA-wrapped content encryption keys.
type RSAPrivateKey struct {
	KeyDescription
	*rsa.PrivateKey
}

func (k *RSAPrivateKey) Type() KeyType { return KeyTypeRSA }

type rsaPrivateKeyJSONWrapper struct {
	KeyDescription
	Type KeyType `json:"kty"`
	N    string  `json:"n"`
	E    string  `json:"e"`
	D    string  `json:"d"`
	P    string  `json:"p,omitempty"`
	Q    string  `json:"q,omitempty"`
	DP   string  `json:"dp,omitempty"`
	DQ   string  `json:"dq,omitempty"`
	QI   string  `json:"qi,omitempty"`
}

func (k *RSAPrivateKey) MarshalJSON() ([]byte, error) {
	w := rsaPrivateKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		N:              base64url.EncodeToString(k.PublicKey.N.Bytes()),
		E:              base64url.EncodeToString(big.NewInt(int64(k.PublicKey.E)).Bytes()),
		D:              base64url.EncodeToString(k.D.Bytes()),
	}
	if len(k.Primes) == 2 {
		w.P = base64url.EncodeToString(k.Primes[0].Bytes())
		w.Q = base64url.EncodeToString(k.Primes[1].Bytes())
		if k.Precomputed.Dp != nil {
			w.DP = base64url.EncodeToString(k.Precomputed.Dp.Bytes())
			w.DQ = base64url.EncodeToString(k.Precomputed.Dq.Bytes())
			w.QI = base64url.EncodeToString(k.Precomputed.Qinv.Bytes())
		}
	}
	return json.Marshal(w)
}

func (k *RSAPrivateKey) UnmarshalJSON(data []byte) error {
	var w rsaPrivateKeyJSONWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeRSA {
		return fmt.Errorf("jwk: invalid key type: %s", w.Type)
	}

	pub, err := decodeRSAPublicKey(w.N, w.E)
	if err != nil {
		return err
	}
	dBytes, err := base64url.DecodeString(w.D)
	if err != nil {
		return fmt.Errorf("jwk: invalid d value: %w", err)
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(dBytes),
	}

	if w.P != "" && w.Q != "" {
		pBytes, err := base64url.DecodeString(w.P)
		if err != nil {
			return fmt.Errorf("jwk: invalid p value: %w", err)
		}
		qBytes, err := base64url.DecodeString(w.Q)
		if err != nil {
			return fmt.Errorf("jwk: invalid q value: %w", err)
		}
		priv.Primes = []*big.Int{new(big.Int).SetBytes(pBytes), new(big.Int).SetBytes(qBytes)}
	}

	if err := priv.Validate(); err != nil {
		return fmt.Errorf("jwk: invalid RSA private key: %w", err)
	}
	priv.Precompute()

	k.KeyDescription = w.KeyDescription
	k.PrivateKey = priv
	return nil
}

// Thumbprint implements RFC 7638 for RSA keys using the public
// components only, per the RFC's requirement that the thumbprint be
// computable from the public key alone.
func (k *RSAPrivateKey) Thumbprint() (string, error) {
	return rsaThumbprint(&k.PublicKey)
}

// CreateSigner creates a jws.Signer for RS256/384/512 or PS256/384/512
// using this key.
func (k *RSAPrivateKey) CreateSigner(alg jwa.SignatureAlgorithm) (jws.Signer, error) {
	info, ok := jwa.LookupSignature(alg)
	if !ok {
		return nil, fmt.Errorf("jwk: unknown signature algorithm %s", alg)
	}
	switch info.Family {
	case "RSA-PKCS1":
		return jws.RSSigner(alg, k.PrivateKey)
	case "RSA-PSS":
		return jws.PSSigner(alg, k.PrivateKey)
	default:
		return nil, fmt.Errorf("jwk: RSA key cannot create a signer for %s", alg)
	}
}

// CreateKeyUnwrapper creates a jwe.KeyUnwrapper for RSA1_5 or
// RSA-OAEP/-256/-384/-512.
func (k *RSAPrivateKey) CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyUnwrapper, error) {
	return jwe.RSAUnwrapper(alg, k.PrivateKey)
}
