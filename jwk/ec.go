package jwk

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jws"
)

var supportedCurves = map[string]elliptic.Curve{
	"P-256": elliptic.P256(),
	"P-384": elliptic.P384(),
	"P-521": elliptic.P521(),
}

// ecdhCurve maps an elliptic.Curve to the crypto/ecdh.Curve used for key
// agreement (ECDH-ES), since the ECDSA and ECDH APIs in the standard
// library deliberately use distinct curve types to keep their key
// material non-interchangeable by construction.
func ecdhCurve(curve elliptic.Curve) (ecdh.Curve, error) {
	switch curve {
	case elliptic.P256():
		return ecdh.P256(), nil
	case elliptic.P384():
		return ecdh.P384(), nil
	case elliptic.P521():
		return ecdh.P521(), nil
	default:
		return nil, fmt.Errorf("jwk: unsupported EC curve for key agreement")
	}
}

// ECDSAPublicKey implements "kty": "EC" public keys, RFC 7518 section 6.2.1.
type ECDSAPublicKey struct {
	KeyDescription
	*ecdsa.PublicKey
}

func (k *ECDSAPublicKey) Type() KeyType { return KeyTypeEC }

type ecdsaPublicKeyJSONWrapper struct {
	KeyDescription
	Type  KeyType `json:"kty"`
	Curve string  `json:"crv"`
	X     string  `json:"x"`
	Y     string  `json:"y"`
}

func (k *ECDSAPublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(ecdsaPublicKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		Curve:          k.Curve.Params().Name,
		X:              base64url.EncodeToString(k.X.Bytes()),
		Y:              base64url.EncodeToString(k.Y.Bytes()),
	})
}

func (k *ECDSAPublicKey) UnmarshalJSON(data []byte) error {
	var w ecdsaPublicKeyJSONWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeEC {
		return fmt.Errorf("jwk: invalid key type: %s", w.Type)
	}

	pub, err := decodeECDSAPublicKey(w.Curve, w.X, w.Y)
	if err != nil {
		return err
	}

	k.KeyDescription = w.KeyDescription
	k.PublicKey = pub
	return nil
}

func decodeECDSAPublicKey(crv, x, y string) (*ecdsa.PublicKey, error) {
	curve, ok := supportedCurves[crv]
	if !ok {
		return nil, fmt.Errorf("jwk: invalid EC curve: %s", crv)
	}
	xBytes, err := base64url.DecodeString(x)
	if err != nil {
		return nil, fmt.Errorf("jwk: invalid x value: %w", err)
	}
	yBytes, err := base64url.DecodeString(y)
	if err != nil {
		return nil, fmt.Errorf("jwk: invalid y value: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

// Thumbprint implements RFC 7638 for EC public keys: the canonical JSON
// object has exactly "crv", "kty", "x", "y", in that lexicographic order.
func (k *ECDSAPublicKey) Thumbprint() (string, error) {
	return ecdsaThumbprint(k.PublicKey)
}

func ecdsaThumbprint(pub *ecdsa.PublicKey) (string, error) {
	canonical := fmt.Sprintf(`{"crv":%q,"kty":"EC","x":%q,"y":%q}`,
		pub.Curve.Params().Name,
		base64url.EncodeToString(pub.X.Bytes()),
		base64url.EncodeToString(pub.Y.Bytes()))
	sum := sha256.Sum256([]byte(canonical))
	return base64url.EncodeToString(sum[:]), nil
}

// CreateVerifier creates a jws.Verifier for ES256/384/512.
func (k *ECDSAPublicKey) CreateVerifier(alg jwa.SignatureAlgorithm) (jws.Verifier, error) {
	return jws.ESVerifier(alg, k.PublicKey)
}

// CreateKeyWrapper creates a jwe.KeyWrapper for ECDH-ES or
// ECDH-ES+AxxxKW. apu/apv may be nil. For plain ECDH-ES, encDerivedBits
// must name the bit length of the content encryption key the intended
// "enc" algorithm requires.
func (k *ECDSAPublicKey) CreateKeyWrapper(alg jwa.KeyManagementAlgorithm, apu, apv []byte, encDerivedBits int) (jwe.KeyWrapper, error) {
	curve, err := ecdhCurve(k.Curve)
	if err != nil {
		return nil, err
	}
	pub, err := curve.NewPublicKey(elliptic.Marshal(k.Curve, k.X, k.Y))
	if err != nil {
		return nil, err
	}
	return jwe.ECDHESWrapper(alg, curve, pub, apu, apv, encDerivedBits)
}

// ECDSAPrivateKey implements "kty": "EC" private keys, RFC 7518 section
// 6.2.2.
type ECDSAPrivateKey struct {
	KeyDescription
	*ecdsa.PrivateKey
}

func (k *ECDSAPrivateKey) Type() KeyType { return KeyTypeEC }

type ecdsaPrivateKeyJSONWrapper struct {
	KeyDescription
	Type  KeyType `json:"kty"`
	Curve string  `json:"crv"`
	X     string  `json:"x"`
	Y     string  `json:"y"`
	D     string  `json:"d"`
}

func (k *ECDSAPrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(ecdsaPrivateKeyJSONWrapper{
		KeyDescription: k.KeyDescription,
		Type:           k.Type(),
		Curve:          k.Curve.Params().Name,
		X:              base64url.EncodeToString(k.PublicKey.X.Bytes()),
		Y:              base64url.EncodeToString(k.PublicKey.Y.Bytes()),
		D:              base64url.EncodeToString(k.D.Bytes()),
	})
}

func (k *ECDSAPrivateKey) UnmarshalJSON(data []byte) error {
	var w ecdsaPrivateKeyJSONWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type != KeyTypeEC {
		return fmt.Errorf("jwk: invalid key type: %s", w.Type)
	}

	pub, err := decodeECDSAPublicKey(w.Curve, w.X, w.Y)
	if err != nil {
		return err
	}
	dBytes, err := base64url.DecodeString(w.D)
	if err != nil {
		return fmt.Errorf("jwk: invalid d value: %w", err)
	}

	k.KeyDescription = w.KeyDescription
	k.PrivateKey = &ecdsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(dBytes),
	}
	return nil
}

// Thumbprint implements RFC 7638 for EC keys using the public
// components only.
func (k *ECDSAPrivateKey) Thumbprint() (string, error) {
	return ecdsaThumbprint(&k.PublicKey)
}

// CreateSigner creates a jws.Signer for ES256/384/512.
func (k *ECDSAPrivateKey) CreateSigner(alg jwa.SignatureAlgorithm) (jws.Signer, error) {
	switch alg {
	case jwa.ES256:
		return jws.ES256Signer(k.PrivateKey)
	case jwa.ES384:
		return jws.ES384Signer(k.PrivateKey)
	case jwa.ES512:
		return jws.ES512Signer(k.PrivateKey)
	default:
		return nil, fmt.Errorf("jwk: EC key cannot create a signer for %s", alg)
	}
}

// CreateKeyUnwrapper creates a jwe.KeyUnwrapper for ECDH-ES or
// ECDH-ES+AxxxKW. epk is the ephemeral public key read from the JWE
// header's "epk" member.
func (k *ECDSAPrivateKey) CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm, epk *ECDSAPublicKey, apu, apv []byte, directDerivedBits int) (jwe.KeyUnwrapper, error) {
	curve, err := ecdhCurve(k.Curve)
	if err != nil {
		return nil, err
	}
	priv, err := curve.NewPrivateKey(k.D.FillBytes(make([]byte, (k.Curve.Params().BitSize+7)/8)))
	if err != nil {
		return nil, err
	}
	epkPub, err := curve.NewPublicKey(elliptic.Marshal(epk.Curve, epk.X, epk.Y))
	if err != nil {
		return nil, err
	}
	return jwe.ECDHESUnwrapper(alg, curve, priv, epkPub, apu, apv, directDerivedBits)
}
