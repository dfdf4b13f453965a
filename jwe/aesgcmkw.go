package jwe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
)

const gcmKWIVLen = 12

// aesGCMKW implements A128GCMKW/A192GCMKW/A256GCMKW (RFC 7518 section
// 4.7): the content encryption key is wrapped using AES-GCM with a
// freshly generated IV, and the resulting IV and authentication tag
// travel as the "iv" and "tag" header parameters.
type aesGCMKW struct {
	alg jwa.KeyManagementAlgorithm
	kek []byte

	// lastIV and lastTag are populated by WrapKey and surfaced through
	// Params, since RFC 7518 4.7.1.1/4.7.1.2 carry them as header
	// members rather than as part of the encrypted key segment.
	lastIV  []byte
	lastTag []byte
}

func (a *aesGCMKW) Alg() jwa.KeyManagementAlgorithm { return a.alg }

func (a *aesGCMKW) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(a.kek)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, gcmKWIVLen)
}

func (a *aesGCMKW) WrapKey(cek []byte) ([]byte, error) {
	gcm, err := a.gcm()
	if err != nil {
		return nil, err
	}

	iv := make([]byte, gcmKWIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, cek, nil)
	ciphertext, tag := sealed[:len(sealed)-gcm.Overhead()], sealed[len(sealed)-gcm.Overhead():]

	a.lastIV = iv
	a.lastTag = tag
	return ciphertext, nil
}

func (a *aesGCMKW) Params() map[string]any {
	return map[string]any{
		"iv":  base64url.EncodeToString(a.lastIV),
		"tag": base64url.EncodeToString(a.lastTag),
	}
}

func (a *aesGCMKW) UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error) {
	if len(a.lastIV) != gcmKWIVLen || len(a.lastTag) == 0 {
		return nil, fmt.Errorf("jwe: AES-GCM-KW unwrap requires iv and tag from the JWE header")
	}

	gcm, err := a.gcm()
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte{}, encryptedKey...), a.lastTag...)
	cek, err := gcm.Open(nil, a.lastIV, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if cekBytes > 0 && len(cek) != cekBytes {
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}

func newAESGCMKW(alg jwa.KeyManagementAlgorithm, kek []byte) (*aesGCMKW, error) {
	info, ok := jwa.LookupKeyManagement(alg)
	if !ok || info.Family != "AESGCMKW" {
		return nil, fmt.Errorf("jwe: not an AES-GCM-KW algorithm: %s", alg)
	}
	if len(kek)*8 != info.KeyBits {
		return nil, fmt.Errorf("jwe: %s requires a %d bit key wrapping key, got %d bits", alg, info.KeyBits, len(kek)*8)
	}
	return &aesGCMKW{alg: alg, kek: kek}, nil
}

// AESGCMKWWrapper creates a KeyWrapper implementing A128GCMKW/A192GCMKW/
// A256GCMKW. The returned value also implements HeaderUpdater; the
// writer pipeline must call Params after WrapKey and merge the result
// into the JWE protected header.
func AESGCMKWWrapper(alg jwa.KeyManagementAlgorithm, kek []byte) (KeyWrapper, error) {
	return newAESGCMKW(alg, kek)
}

// AESGCMKWUnwrapper creates a KeyUnwrapper implementing A128GCMKW/
// A192GCMKW/A256GCMKW. iv and tag must be the values read from the
// JWE's "iv" and "tag" header parameters.
func AESGCMKWUnwrapper(alg jwa.KeyManagementAlgorithm, kek, iv, tag []byte) (KeyUnwrapper, error) {
	kw, err := newAESGCMKW(alg, kek)
	if err != nil {
		return nil, err
	}
	kw.lastIV = iv
	kw.lastTag = tag
	return kw, nil
}
