package jws

import "github.com/halimath/compactjose/jwa"

// noneSigner implements the "none" (unsecured) signature method, RFC 7519
// section 6. It always produces a zero-length signature. The reader
// pipeline only honors it when jwt.Policy.AllowUnsecured() was set;
// an unsecured token is never accepted silently.
type noneSigner struct{}

func (noneSigner) Alg() jwa.SignatureAlgorithm { return jwa.None }

func (noneSigner) Sign([]byte) ([]byte, error) { return []byte{}, nil }

// None returns a SignerVerifier for the "none" algorithm.
func None() SignerVerifier {
	return symmetric(noneSigner{})
}
