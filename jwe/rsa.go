package jwe

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/halimath/compactjose/jwa"
)

// rsaWrapper implements RSA1_5 (RSAES-PKCS1-v1_5) and RSA-OAEP/-256/-384/
// -512 (RFC 7518 section 4.2/4.3).
type rsaWrapper struct {
	alg       jwa.KeyManagementAlgorithm
	publicKey *rsa.PublicKey
	oaepHash  func() hash.Hash // nil for RSA1_5
}

func (r *rsaWrapper) Alg() jwa.KeyManagementAlgorithm { return r.alg }

func (r *rsaWrapper) WrapKey(cek []byte) ([]byte, error) {
	if r.oaepHash == nil {
		return rsa.EncryptPKCS1v15(rand.Reader, r.publicKey, cek)
	}
	return rsa.EncryptOAEP(r.oaepHash(), rand.Reader, r.publicKey, cek, nil)
}

// RSAWrapper creates a KeyWrapper for RSA1_5, RSA-OAEP, RSA-OAEP-256,
// RSA-OAEP-384, or RSA-OAEP-512.
func RSAWrapper(alg jwa.KeyManagementAlgorithm, publicKey *rsa.PublicKey) (KeyWrapper, error) {
	h, err := rsaOAEPHash(alg)
	if err != nil {
		return nil, err
	}
	return &rsaWrapper{alg: alg, publicKey: publicKey, oaepHash: h}, nil
}

type rsaUnwrapper struct {
	alg        jwa.KeyManagementAlgorithm
	privateKey *rsa.PrivateKey
	oaepHash   func() hash.Hash
}

func (r *rsaUnwrapper) Alg() jwa.KeyManagementAlgorithm { return r.alg }

func (r *rsaUnwrapper) UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error) {
	var cek []byte
	var err error
	if r.oaepHash == nil {
		cek, err = rsa.DecryptPKCS1v15(rand.Reader, r.privateKey, encryptedKey)
	} else {
		cek, err = rsa.DecryptOAEP(r.oaepHash(), rand.Reader, r.privateKey, encryptedKey, nil)
	}
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if cekBytes > 0 && len(cek) != cekBytes {
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}

// RSAUnwrapper creates a KeyUnwrapper for RSA1_5, RSA-OAEP, RSA-OAEP-256,
// RSA-OAEP-384, or RSA-OAEP-512.
//
// RSA1_5 decryption uses rsa.DecryptPKCS1v15 with a random reader, which
// Go's standard library internally treats as a constant-time-equivalent
// implementation specifically to resist Bleichenbacher-style padding
// oracles; callers must still return ErrDecryptionFailed uniformly on
// any failure, which this function does.
func RSAUnwrapper(alg jwa.KeyManagementAlgorithm, privateKey *rsa.PrivateKey) (KeyUnwrapper, error) {
	h, err := rsaOAEPHash(alg)
	if err != nil {
		return nil, err
	}
	return &rsaUnwrapper{alg: alg, privateKey: privateKey, oaepHash: h}, nil
}

func rsaOAEPHash(alg jwa.KeyManagementAlgorithm) (func() hash.Hash, error) {
	switch alg {
	case jwa.RSA1_5:
		return nil, nil
	case jwa.RSAOAEP:
		return sha1.New, nil
	case jwa.RSAOAEP256:
		return sha256.New, nil
	case jwa.RSAOAEP384:
		return sha512.New384, nil
	case jwa.RSAOAEP512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("jwe: not an RSA key management algorithm: %s", alg)
	}
}
