package jws

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"

	"github.com/halimath/compactjose/jwa"
)

// ecdsaSigner implements ES256/384/512 (RFC 7518 section 3.4). The JWS
// signature encoding is the fixed-width concatenation R || S, zero
// padded to the curve's coordinate size, not the ASN.1 DER encoding
// crypto/ecdsa.Sign's byte-slice cousins would otherwise suggest.
type ecdsaSigner struct {
	alg        jwa.SignatureAlgorithm
	privateKey *ecdsa.PrivateKey
	hf         func() hash.Hash
	coordBytes int
}

func (e *ecdsaSigner) Alg() jwa.SignatureAlgorithm { return e.alg }

func (e *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	h := e.hf()
	h.Write(data)
	r, s, err := ecdsa.Sign(rand.Reader, e.privateKey, h.Sum(nil))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 2*e.coordBytes)
	r.FillBytes(out[:e.coordBytes])
	s.FillBytes(out[e.coordBytes:])
	return out, nil
}

func coordBytes(bitSize int) int {
	return (bitSize + 7) / 8
}

// ES256Signer creates a Signer implementing ES256. key must use
// elliptic.P256().
func ES256Signer(key *ecdsa.PrivateKey) (Signer, error) {
	if key.Curve.Params().BitSize != 256 {
		return nil, fmt.Errorf("jws: ES256 requires a P-256 key")
	}
	return &ecdsaSigner{alg: jwa.ES256, privateKey: key, hf: sha256.New, coordBytes: coordBytes(256)}, nil
}

// ES384Signer creates a Signer implementing ES384. key must use
// elliptic.P384().
func ES384Signer(key *ecdsa.PrivateKey) (Signer, error) {
	if key.Curve.Params().BitSize != 384 {
		return nil, fmt.Errorf("jws: ES384 requires a P-384 key")
	}
	return &ecdsaSigner{alg: jwa.ES384, privateKey: key, hf: sha512.New384, coordBytes: coordBytes(384)}, nil
}

// ES512Signer creates a Signer implementing ES512. key must use
// elliptic.P521().
func ES512Signer(key *ecdsa.PrivateKey) (Signer, error) {
	if key.Curve.Params().BitSize != 521 {
		return nil, fmt.Errorf("jws: ES512 requires a P-521 key")
	}
	return &ecdsaSigner{alg: jwa.ES512, privateKey: key, hf: sha512.New, coordBytes: coordBytes(521)}, nil
}

type ecdsaVerifier struct {
	alg        jwa.SignatureAlgorithm
	publicKey  *ecdsa.PublicKey
	hf         func() hash.Hash
	coordBytes int
}

func (e *ecdsaVerifier) Alg() jwa.SignatureAlgorithm { return e.alg }

func (e *ecdsaVerifier) Verify(data, signature []byte) error {
	if len(signature) != 2*e.coordBytes {
		return ErrInvalidSignature
	}

	r := new(big.Int).SetBytes(signature[:e.coordBytes])
	s := new(big.Int).SetBytes(signature[e.coordBytes:])

	h := e.hf()
	h.Write(data)

	if !ecdsa.Verify(e.publicKey, h.Sum(nil), r, s) {
		return ErrInvalidSignature
	}
	return nil
}

// ESVerifier creates a Verifier for the named ECDSA algorithm.
func ESVerifier(alg jwa.SignatureAlgorithm, key *ecdsa.PublicKey) (Verifier, error) {
	switch alg {
	case jwa.ES256:
		return ES256Verifier(key)
	case jwa.ES384:
		return ES384Verifier(key)
	case jwa.ES512:
		return ES512Verifier(key)
	default:
		return nil, fmt.Errorf("jws: not an ECDSA algorithm: %s", alg)
	}
}

// ES256Verifier creates a Verifier implementing ES256.
func ES256Verifier(key *ecdsa.PublicKey) (Verifier, error) {
	if key.Curve.Params().BitSize != 256 {
		return nil, fmt.Errorf("jws: ES256 requires a P-256 key")
	}
	return &ecdsaVerifier{alg: jwa.ES256, publicKey: key, hf: sha256.New, coordBytes: coordBytes(256)}, nil
}

// ES384Verifier creates a Verifier implementing ES384.
func ES384Verifier(key *ecdsa.PublicKey) (Verifier, error) {
	if key.Curve.Params().BitSize != 384 {
		return nil, fmt.Errorf("jws: ES384 requires a P-384 key")
	}
	return &ecdsaVerifier{alg: jwa.ES384, publicKey: key, hf: sha512.New384, coordBytes: coordBytes(384)}, nil
}

// ES512Verifier creates a Verifier implementing ES512.
func ES512Verifier(key *ecdsa.PublicKey) (Verifier, error) {
	if key.Curve.Params().BitSize != 521 {
		return nil, fmt.Errorf("jws: ES512 requires a P-521 key")
	}
	return &ecdsaVerifier{alg: jwa.ES512, publicKey: key, hf: sha512.New, coordBytes: coordBytes(521)}, nil
}
