// Package jws implements the JSON Web Signature primitives of RFC 7515:
// a Signer/Verifier capability pair per signature algorithm family
// (HMAC, RSA PKCS1v15, RSA-PSS, ECDSA), selected by
// jwa.SignatureAlgorithm. MAC tags are compared in constant time.
package jws

import (
	"crypto/hmac"
	"errors"

	"github.com/halimath/compactjose/jwa"
)

// ErrInvalidSignature is returned from Verify when the signature or MAC
// does not match.
var ErrInvalidSignature = errors.New("jws: invalid signature")

// Signer computes a signature or MAC over a byte slice.
type Signer interface {
	// Alg returns the signature algorithm this Signer implements.
	Alg() jwa.SignatureAlgorithm

	// Sign returns the signature bytes for data.
	Sign(data []byte) ([]byte, error)
}

// Verifier verifies a signature or MAC over a byte slice. Implementations
// must compare tags in constant time and must not modify data or
// signature.
type Verifier interface {
	Alg() jwa.SignatureAlgorithm
	Verify(data, signature []byte) error
}

// SignerVerifier combines both roles; used for symmetric (MAC-based)
// algorithms where signing and verifying use the same secret.
type SignerVerifier interface {
	Signer
	Verifier
}

// symmetricSignerVerifier derives Verify from Sign plus a constant-time
// comparison, for MAC-based algorithms (HMAC, "none").
type symmetricSignerVerifier struct {
	Signer
}

func (s *symmetricSignerVerifier) Verify(data, signature []byte) error {
	computed, err := s.Sign(data)
	if err != nil {
		return err
	}
	if !hmac.Equal(computed, signature) {
		return ErrInvalidSignature
	}
	return nil
}

func symmetric(s Signer) SignerVerifier {
	return &symmetricSignerVerifier{Signer: s}
}
