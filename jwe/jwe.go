// Package jwe implements the JSON Web Encryption primitives of RFC
// 7516/7518: a KeyWrapper/KeyUnwrapper pair per key management
// algorithm family (direct, AES-KW, AES-GCM-KW, RSAES-PKCS1, RSA-OAEP,
// ECDH-ES, PBES2) and an AuthenticatedEncryptor/AuthenticatedDecryptor
// pair per content encryption algorithm family (AES-CBC-HMAC, AES-GCM),
// plus the DEF compressor. The shape mirrors jws: small interfaces
// dispatched on a jwa algorithm constant, one file per algorithm
// family, small constructor functions returning the interface.
package jwe

import (
	"errors"

	"github.com/halimath/compactjose/jwa"
)

// ErrDecryptionFailed is returned by AuthenticatedDecryptor.Open and by
// KeyUnwrapper.UnwrapKey when the ciphertext, tag, or wrapped key cannot be
// authenticated or decrypted. Implementations must not distinguish
// between "bad tag" and "bad padding" in the returned error, to avoid
// turning a padding oracle into a decryption oracle.
var ErrDecryptionFailed = errors.New("jwe: decryption failed")

// HeaderUpdater is implemented by key management algorithms that must
// write additional JWE header parameters as a side effect of wrapping a
// content encryption key (epk/apu/apv for ECDH-ES, p2s/p2c for PBES2,
// iv/tag for AES-GCM-KW). The writer pipeline calls Params after WrapKey to
// collect them.
type HeaderUpdater interface {
	// Params returns the header members this wrap operation produced.
	// Keys and values must already be JSON-marshalable (e.g. []byte
	// values base64url-encoded to string by the implementation).
	Params() map[string]any
}

// KeyWrapper produces the encrypted key segment of a JWE from a content
// encryption key, RFC 7516 section 5.1 steps 4-5.
type KeyWrapper interface {
	Alg() jwa.KeyManagementAlgorithm

	// WrapKey wraps cek and returns the encrypted key bytes to place in
	// the JWE's second segment. For "dir" and "ECDH-ES" (without a KW
	// suffix) this returns a zero-length slice.
	WrapKey(cek []byte) ([]byte, error)
}

// KeyUnwrapper recovers a content encryption key from the encrypted key
// segment, RFC 7516 section 5.2 steps 10-15.
type KeyUnwrapper interface {
	Alg() jwa.KeyManagementAlgorithm

	// UnwrapKey recovers the content encryption key of the given
	// length in bytes from encryptedKey. The direct ECDH-ES unwrapper
	// ignores encryptedKey; the dir unwrapper requires it to be empty.
	UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error)
}

// AuthenticatedEncryptor implements one "enc" content encryption
// algorithm, RFC 7516 section 5.1 step 14-15.
type AuthenticatedEncryptor interface {
	Alg() jwa.EncryptionAlgorithm

	// KeySize returns the content encryption key size this algorithm
	// requires, in bytes.
	KeySize() int

	// Seal encrypts plaintext with cek, authenticating aad alongside
	// it, and returns (iv, ciphertext, tag).
	Seal(cek, plaintext, aad []byte) (iv, ciphertext, tag []byte, err error)
}

// AuthenticatedDecryptor implements the inverse of AuthenticatedEncryptor.
type AuthenticatedDecryptor interface {
	Alg() jwa.EncryptionAlgorithm
	KeySize() int

	// Open authenticates aad and the ciphertext under tag and, if
	// valid, returns the plaintext. Returns ErrDecryptionFailed on any
	// authentication failure.
	Open(cek, iv, ciphertext, tag, aad []byte) ([]byte, error)
}

// Compressor implements a JWE "zip" compression algorithm, RFC 7516
// section 4.1.3.
type Compressor interface {
	Alg() jwa.CompressionAlgorithm
	Compress(plaintext []byte) ([]byte, error)

	// Decompress inflates src, refusing to produce more than maxSize
	// bytes of output: an attacker-controlled compressed blob must not
	// be allowed to decompress without bound.
	Decompress(src []byte, maxSize int) ([]byte, error)
}
