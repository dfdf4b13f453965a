package jws

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/halimath/compactjose/jwa"
)

// hmacSignerVerifier implements HS256/384/512 (RFC 7518 section 3.2).
type hmacSignerVerifier struct {
	alg    jwa.SignatureAlgorithm
	h      func() hash.Hash
	secret []byte
}

func (h *hmacSignerVerifier) Alg() jwa.SignatureAlgorithm { return h.alg }

func (h *hmacSignerVerifier) Sign(data []byte) ([]byte, error) {
	mac := hmac.New(h.h, h.secret)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// HSSignerVerifier creates a SignerVerifier for the named HMAC algorithm.
func HSSignerVerifier(alg jwa.SignatureAlgorithm, secret []byte) (SignerVerifier, error) {
	switch alg {
	case jwa.HS256:
		return HS256(secret), nil
	case jwa.HS384:
		return HS384(secret), nil
	case jwa.HS512:
		return HS512(secret), nil
	default:
		return nil, fmt.Errorf("jws: not an HMAC algorithm: %s", alg)
	}
}

// HS256 creates a SignerVerifier implementing HMAC using SHA-256.
func HS256(secret []byte) SignerVerifier {
	return symmetric(&hmacSignerVerifier{alg: jwa.HS256, h: sha256.New, secret: secret})
}

// HS384 creates a SignerVerifier implementing HMAC using SHA-384.
func HS384(secret []byte) SignerVerifier {
	return symmetric(&hmacSignerVerifier{alg: jwa.HS384, h: sha512.New384, secret: secret})
}

// HS512 creates a SignerVerifier implementing HMAC using SHA-512.
func HS512(secret []byte) SignerVerifier {
	return symmetric(&hmacSignerVerifier{alg: jwa.HS512, h: sha512.New, secret: secret})
}
