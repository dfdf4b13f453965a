package jwe

import (
	"fmt"

	"github.com/halimath/compactjose/jwa"
)

// dirKeyManagement implements "dir" (RFC 7518 section 4.5): the shared
// symmetric key is used directly as the content encryption key, and the
// encrypted key segment of the JWE compact serialization is empty.
type dirKeyManagement struct {
	cek []byte
}

func (d *dirKeyManagement) Alg() jwa.KeyManagementAlgorithm { return jwa.Dir }

func (d *dirKeyManagement) WrapKey(cek []byte) ([]byte, error) {
	if len(cek) != len(d.cek) {
		return nil, fmt.Errorf("jwe: dir key management requires the shared key to match the content encryption algorithm's key size")
	}
	return []byte{}, nil
}

// DerivedDirectKey returns the shared key: for "dir" the content
// encryption key is the key management key, so the writer pipeline uses
// this instead of generating a random CEK. Mirrors the ECDH-ES direct
// mode's accessor of the same name. The result is a copy, so callers
// may zeroize it without destroying the long-lived key.
func (d *dirKeyManagement) DerivedDirectKey() []byte {
	return append([]byte(nil), d.cek...)
}

func (d *dirKeyManagement) UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error) {
	if len(encryptedKey) != 0 {
		return nil, ErrDecryptionFailed
	}
	if cekBytes > 0 && len(d.cek) != cekBytes {
		return nil, ErrDecryptionFailed
	}
	return append([]byte(nil), d.cek...), nil
}

// DirWrapper creates a KeyWrapper implementing "dir" key management. key
// is used directly as the content encryption key.
func DirWrapper(key []byte) KeyWrapper {
	return &dirKeyManagement{cek: key}
}

// DirUnwrapper creates a KeyUnwrapper implementing "dir" key management.
func DirUnwrapper(key []byte) KeyUnwrapper {
	return &dirKeyManagement{cek: key}
}
