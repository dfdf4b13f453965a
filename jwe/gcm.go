package jwe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/halimath/compactjose/jwa"
)

// gcmEncryption implements A128GCM/A192GCM/A256GCM (RFC 7518 section
// 5.3): AES-GCM with a 96 bit IV and a 128 bit authentication tag.
type gcmEncryption struct {
	alg    jwa.EncryptionAlgorithm
	keyLen int
}

func (g *gcmEncryption) Alg() jwa.EncryptionAlgorithm { return g.alg }
func (g *gcmEncryption) KeySize() int                 { return g.keyLen }

func (g *gcmEncryption) aead(cek []byte) (cipher.AEAD, error) {
	if len(cek) != g.keyLen {
		return nil, fmt.Errorf("jwe: %s requires a %d byte content encryption key, got %d", g.alg, g.keyLen, len(cek))
	}
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (g *gcmEncryption) Seal(cek, plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	aead, err := g.aead(cek)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, err
	}

	sealed := aead.Seal(nil, iv, plaintext, aad)
	ciphertext = sealed[:len(sealed)-aead.Overhead()]
	tag = sealed[len(sealed)-aead.Overhead():]
	return iv, ciphertext, tag, nil
}

func (g *gcmEncryption) Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	aead, err := g.aead(cek)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// GCM creates an AuthenticatedEncryptor and AuthenticatedDecryptor pair
// implementing A128GCM, A192GCM, or A256GCM.
func GCM(alg jwa.EncryptionAlgorithm) (AuthenticatedEncryptor, AuthenticatedDecryptor, error) {
	info, ok := jwa.LookupEncryption(alg)
	if !ok || info.Family != "GCM" {
		return nil, nil, fmt.Errorf("jwe: not a GCM encryption algorithm: %s", alg)
	}
	g := &gcmEncryption{alg: alg, keyLen: info.CEKBits / 8}
	return g, g, nil
}
