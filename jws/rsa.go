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

// rsaSigner implements RS256/384/512, RSASSA-PKCS1-v1_5 with SHA-2
// hashing (RFC 7518 section 3.3).
type rsaSigner struct {
	alg        jwa.SignatureAlgorithm
	privateKey *rsa.PrivateKey
	hash       crypto.Hash
	hf         func() hash.Hash
}

func (r *rsaSigner) Alg() jwa.SignatureAlgorithm { return r.alg }

func (r *rsaSigner) Sign(data []byte) ([]byte, error) {
	h := r.hf()
	h.Write(data)
	return rsa.SignPKCS1v15(rand.Reader, r.privateKey, r.hash, h.Sum(nil))
}

// RS256Signer creates a Signer implementing RS256.
func RS256Signer(key *rsa.PrivateKey) Signer {
	return &rsaSigner{alg: jwa.RS256, privateKey: key, hash: crypto.SHA256, hf: sha256.New}
}

// RS384Signer creates a Signer implementing RS384.
func RS384Signer(key *rsa.PrivateKey) Signer {
	return &rsaSigner{alg: jwa.RS384, privateKey: key, hash: crypto.SHA384, hf: sha512.New384}
}

// RS512Signer creates a Signer implementing RS512.
func RS512Signer(key *rsa.PrivateKey) Signer {
	return &rsaSigner{alg: jwa.RS512, privateKey: key, hash: crypto.SHA512, hf: sha512.New}
}

// RSSigner creates a Signer for the named RSA PKCS1v15 algorithm.
func RSSigner(alg jwa.SignatureAlgorithm, key *rsa.PrivateKey) (Signer, error) {
	switch alg {
	case jwa.RS256:
		return RS256Signer(key), nil
	case jwa.RS384:
		return RS384Signer(key), nil
	case jwa.RS512:
		return RS512Signer(key), nil
	default:
		return nil, fmt.Errorf("jws: not a PKCS1v15 RSA algorithm: %s", alg)
	}
}

// rsaVerifier implements the verifying half of RS256/384/512.
type rsaVerifier struct {
	alg       jwa.SignatureAlgorithm
	publicKey *rsa.PublicKey
	hash      crypto.Hash
	hf        func() hash.Hash
}

func (r *rsaVerifier) Alg() jwa.SignatureAlgorithm { return r.alg }

func (r *rsaVerifier) Verify(data, signature []byte) error {
	h := r.hf()
	h.Write(data)
	if err := rsa.VerifyPKCS1v15(r.publicKey, r.hash, h.Sum(nil), signature); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// RSVerifier creates a Verifier for the named RSA PKCS1v15 algorithm.
func RSVerifier(alg jwa.SignatureAlgorithm, key *rsa.PublicKey) (Verifier, error) {
	switch alg {
	case jwa.RS256:
		return RS256Verifier(key), nil
	case jwa.RS384:
		return RS384Verifier(key), nil
	case jwa.RS512:
		return RS512Verifier(key), nil
	default:
		return nil, fmt.Errorf("jws: not a PKCS1v15 RSA algorithm: %s", alg)
	}
}

// RS256Verifier creates a Verifier implementing RS256.
func RS256Verifier(key *rsa.PublicKey) Verifier {
	return &rsaVerifier{alg: jwa.RS256, publicKey: key, hash: crypto.SHA256, hf: sha256.New}
}

// RS384Verifier creates a Verifier implementing RS384.
func RS384Verifier(key *rsa.PublicKey) Verifier {
	return &rsaVerifier{alg: jwa.RS384, publicKey: key, hash: crypto.SHA384, hf: sha512.New384}
}

// RS512Verifier creates a Verifier implementing RS512.
func RS512Verifier(key *rsa.PublicKey) Verifier {
	return &rsaVerifier{alg: jwa.RS512, publicKey: key, hash: crypto.SHA512, hf: sha512.New}
}
