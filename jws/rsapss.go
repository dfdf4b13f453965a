package jws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/halimath/compactjose/jwa"
)

// rsaPSSSigner implements PS256/384/512, RSASSA-PSS with MGF1 (RFC 7518
// section 3.5). The salt length always equals the hash output size, as
// the RFC requires.
type rsaPSSSigner struct {
	alg        jwa.SignatureAlgorithm
	privateKey *rsa.PrivateKey
	hash       crypto.Hash
	hf         func() hash.Hash
}

func (r *rsaPSSSigner) Alg() jwa.SignatureAlgorithm { return r.alg }

func (r *rsaPSSSigner) Sign(data []byte) ([]byte, error) {
	h := r.hf()
	h.Write(data)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: r.hash}
	return rsa.SignPSS(rand.Reader, r.privateKey, r.hash, h.Sum(nil), opts)
}

// PS256Signer creates a Signer implementing PS256.
func PS256Signer(key *rsa.PrivateKey) Signer {
	return &rsaPSSSigner{alg: jwa.PS256, privateKey: key, hash: crypto.SHA256, hf: sha256.New}
}

// PS384Signer creates a Signer implementing PS384.
func PS384Signer(key *rsa.PrivateKey) Signer {
	return &rsaPSSSigner{alg: jwa.PS384, privateKey: key, hash: crypto.SHA384, hf: sha512.New384}
}

// PS512Signer creates a Signer implementing PS512.
func PS512Signer(key *rsa.PrivateKey) Signer {
	return &rsaPSSSigner{alg: jwa.PS512, privateKey: key, hash: crypto.SHA512, hf: sha512.New}
}

// PSSigner creates a Signer for the named RSA-PSS algorithm.
func PSSigner(alg jwa.SignatureAlgorithm, key *rsa.PrivateKey) (Signer, error) {
	switch alg {
	case jwa.PS256:
		return PS256Signer(key), nil
	case jwa.PS384:
		return PS384Signer(key), nil
	case jwa.PS512:
		return PS512Signer(key), nil
	default:
		return nil, fmt.Errorf("jws: not an RSA-PSS algorithm: %s", alg)
	}
}

type rsaPSSVerifier struct {
	alg       jwa.SignatureAlgorithm
	publicKey *rsa.PublicKey
	hash      crypto.Hash
	hf        func() hash.Hash
}

func (r *rsaPSSVerifier) Alg() jwa.SignatureAlgorithm { return r.alg }

func (r *rsaPSSVerifier) Verify(data, signature []byte) error {
	h := r.hf()
	h.Write(data)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: r.hash}
	if err := rsa.VerifyPSS(r.publicKey, r.hash, h.Sum(nil), signature, opts); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// PSVerifier creates a Verifier for the named RSA-PSS algorithm.
func PSVerifier(alg jwa.SignatureAlgorithm, key *rsa.PublicKey) (Verifier, error) {
	switch alg {
	case jwa.PS256:
		return PS256Verifier(key), nil
	case jwa.PS384:
		return PS384Verifier(key), nil
	case jwa.PS512:
		return PS512Verifier(key), nil
	default:
		return nil, fmt.Errorf("jws: not an RSA-PSS algorithm: %s", alg)
	}
}

// PS256Verifier creates a Verifier implementing PS256.
func PS256Verifier(key *rsa.PublicKey) Verifier {
	return &rsaPSSVerifier{alg: jwa.PS256, publicKey: key, hash: crypto.SHA256, hf: sha256.New}
}

// PS384Verifier creates a Verifier implementing PS384.
func PS384Verifier(key *rsa.PublicKey) Verifier {
	return &rsaPSSVerifier{alg: jwa.PS384, publicKey: key, hash: crypto.SHA384, hf: sha512.New384}
}

// PS512Verifier creates a Verifier implementing PS512.
func PS512Verifier(key *rsa.PublicKey) Verifier {
	return &rsaPSSVerifier{alg: jwa.PS512, publicKey: key, hash: crypto.SHA512, hf: sha512.New}
}
