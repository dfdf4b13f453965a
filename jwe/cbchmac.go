package jwe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/halimath/compactjose/jwa"
)

// cbcHMAC implements A128CBC-HS256/A192CBC-HS384/A256CBC-HS512 (RFC 7518
// section 5.2): AES-CBC encryption under the second half of the content
// encryption key, authenticated by an HMAC computed over
// AAD || IV || ciphertext || AAD-bit-length(as a 64 bit big endian
// integer) using the first half of the key, truncated to the leading
// half of the HMAC's natural output size.
type cbcHMAC struct {
	alg    jwa.EncryptionAlgorithm
	hf     func() hash.Hash
	keyLen int // total CEK length in bytes (MAC half + ENC half)
	tagLen int // truncated tag length in bytes
}

func (c *cbcHMAC) Alg() jwa.EncryptionAlgorithm { return c.alg }
func (c *cbcHMAC) KeySize() int                 { return c.keyLen }

func (c *cbcHMAC) split(cek []byte) (macKey, encKey []byte) {
	half := c.keyLen / 2
	return cek[:half], cek[half:]
}

// al builds the "AL" field of RFC 7518 section 5.2.2.1 step 14: the
// number of bits in aad, as a 64 bit big-endian integer.
func al(aad []byte) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(aad))*8)
	return buf[:]
}

func (c *cbcHMAC) mac(macKey, aad, iv, ciphertext []byte) []byte {
	m := hmac.New(c.hf, macKey)
	m.Write(aad)
	m.Write(iv)
	m.Write(ciphertext)
	m.Write(al(aad))
	full := m.Sum(nil)
	return full[:c.tagLen]
}

func (c *cbcHMAC) Seal(cek, plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	if len(cek) != c.keyLen {
		return nil, nil, nil, fmt.Errorf("jwe: %s requires a %d byte content encryption key, got %d", c.alg, c.keyLen, len(cek))
	}
	macKey, encKey := c.split(cek)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, block.BlockSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, err
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	tag = c.mac(macKey, aad, iv, ciphertext)
	return iv, ciphertext, tag, nil
}

func (c *cbcHMAC) Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(cek) != c.keyLen {
		return nil, fmt.Errorf("jwe: %s requires a %d byte content encryption key, got %d", c.alg, c.keyLen, len(cek))
	}
	macKey, encKey := c.split(cek)

	expectedTag := c.mac(macKey, aad, iv, ciphertext)
	if !hmac.Equal(expectedTag, tag) {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() || len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, ErrDecryptionFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, block.BlockSize())
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("jwe: invalid padding")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("jwe: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("jwe: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

func newCBCHMAC(alg jwa.EncryptionAlgorithm) (*cbcHMAC, error) {
	info, ok := jwa.LookupEncryption(alg)
	if !ok || info.Family != "CBC-HMAC" {
		return nil, fmt.Errorf("jwe: not a CBC-HMAC encryption algorithm: %s", alg)
	}

	var hf func() hash.Hash
	switch info.Hash {
	case jwa.SHA256:
		hf = sha256.New
	case jwa.SHA384:
		hf = sha512.New384
	case jwa.SHA512:
		hf = sha512.New
	}

	return &cbcHMAC{alg: alg, hf: hf, keyLen: info.CEKBits / 8, tagLen: info.TagLen}, nil
}

// CBCHMAC creates an AuthenticatedEncryptor and AuthenticatedDecryptor
// pair implementing A128CBC-HS256, A192CBC-HS384, or A256CBC-HS512.
func CBCHMAC(alg jwa.EncryptionAlgorithm) (AuthenticatedEncryptor, AuthenticatedDecryptor, error) {
	c, err := newCBCHMAC(alg)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}
