package jwe

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"

	"github.com/halimath/compactjose/jwa"
)

// aesKWDefaultIV is the default initial value from RFC 3394 section 2.2.3.1.
var aesKWDefaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// aesKW implements A128KW/A192KW/A256KW, the AES Key Wrap algorithm of
// RFC 3394, used directly as the JWE "alg" (RFC 7518 section 4.4).
type aesKW struct {
	alg jwa.KeyManagementAlgorithm
	kek []byte
}

func (a *aesKW) Alg() jwa.KeyManagementAlgorithm { return a.alg }

// WrapKey implements the RFC 3394 section 2.2.1 wrapping algorithm.
func (a *aesKW) WrapKey(cek []byte) ([]byte, error) {
	if len(cek)%8 != 0 || len(cek) < 16 {
		return nil, fmt.Errorf("jwe: AES-KW requires a key that is a multiple of 8 bytes, at least 16: got %d", len(cek))
	}

	block, err := aes.NewCipher(a.kek)
	if err != nil {
		return nil, err
	}

	n := len(cek) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], cek[i*8:(i+1)*8])
	}

	var a8 [8]byte
	copy(a8[:], aesKWDefaultIV[:])

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a8[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf, buf)

			var a64 uint64
			a64 = binary.BigEndian.Uint64(buf[:8])
			a64 ^= uint64(n*j + i)
			binary.BigEndian.PutUint64(a8[:], a64)

			copy(r[i-1][:], buf[8:])
		}
	}

	out := make([]byte, 8+len(cek))
	copy(out[:8], a8[:])
	for i := 0; i < n; i++ {
		copy(out[8+i*8:], r[i][:])
	}
	return out, nil
}

// UnwrapKey implements the RFC 3394 section 2.2.2 unwrapping algorithm.
func (a *aesKW) UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error) {
	if len(encryptedKey) < 16 || len(encryptedKey)%8 != 0 {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(a.kek)
	if err != nil {
		return nil, err
	}

	n := len(encryptedKey)/8 - 1
	var a8 [8]byte
	copy(a8[:], encryptedKey[:8])

	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], encryptedKey[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			var a64 uint64
			a64 = binary.BigEndian.Uint64(a8[:])
			a64 ^= uint64(n*j + i)
			binary.BigEndian.PutUint64(a8[:], a64)

			copy(buf[:8], a8[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf, buf)

			copy(a8[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}

	if a8 != aesKWDefaultIV {
		return nil, ErrDecryptionFailed
	}

	out := make([]byte, n*8)
	for i := 0; i < n; i++ {
		copy(out[i*8:], r[i][:])
	}
	if cekBytes > 0 && len(out) != cekBytes {
		return nil, ErrDecryptionFailed
	}
	return out, nil
}

func newAESKW(alg jwa.KeyManagementAlgorithm, kek []byte) (*aesKW, error) {
	info, ok := jwa.LookupKeyManagement(alg)
	if !ok || info.Family != "AESKW" {
		return nil, fmt.Errorf("jwe: not an AES-KW algorithm: %s", alg)
	}
	if len(kek)*8 != info.KeyBits {
		return nil, fmt.Errorf("jwe: %s requires a %d bit key wrapping key, got %d bits", alg, info.KeyBits, len(kek)*8)
	}
	return &aesKW{alg: alg, kek: kek}, nil
}

// AESKWWrapper creates a KeyWrapper implementing A128KW/A192KW/A256KW.
// kek must be exactly the key size the algorithm names.
func AESKWWrapper(alg jwa.KeyManagementAlgorithm, kek []byte) (KeyWrapper, error) {
	return newAESKW(alg, kek)
}

// AESKWUnwrapper creates a KeyUnwrapper implementing A128KW/A192KW/A256KW.
func AESKWUnwrapper(alg jwa.KeyManagementAlgorithm, kek []byte) (KeyUnwrapper, error) {
	return newAESKW(alg, kek)
}
