// Package jwa defines the closed enumerations of JOSE algorithm
// identifiers this module dispatches on: signature (JWS) algorithms,
// key management and content encryption (JWE) algorithms, and
// compression algorithms (RFC 7518), each carrying its canonical name
// plus the static facts (required key size, hash function, category)
// the rest of the module needs to validate and dispatch without a
// second lookup table.
package jwa

// SignatureAlgorithm names a JWS signing or MAC algorithm, RFC 7518
// section 3.
type SignatureAlgorithm string

const (
	SignatureUnknown SignatureAlgorithm = ""

	HS256 SignatureAlgorithm = "HS256"
	HS384 SignatureAlgorithm = "HS384"
	HS512 SignatureAlgorithm = "HS512"

	RS256 SignatureAlgorithm = "RS256"
	RS384 SignatureAlgorithm = "RS384"
	RS512 SignatureAlgorithm = "RS512"

	PS256 SignatureAlgorithm = "PS256"
	PS384 SignatureAlgorithm = "PS384"
	PS512 SignatureAlgorithm = "PS512"

	ES256 SignatureAlgorithm = "ES256"
	ES384 SignatureAlgorithm = "ES384"
	ES512 SignatureAlgorithm = "ES512"

	None SignatureAlgorithm = "none"
)

// KeyManagementAlgorithm names a JWE "alg" (key management) algorithm,
// RFC 7518 section 4.
type KeyManagementAlgorithm string

const (
	KeyManagementUnknown KeyManagementAlgorithm = ""

	Dir KeyManagementAlgorithm = "dir"

	A128KW KeyManagementAlgorithm = "A128KW"
	A192KW KeyManagementAlgorithm = "A192KW"
	A256KW KeyManagementAlgorithm = "A256KW"

	A128GCMKW KeyManagementAlgorithm = "A128GCMKW"
	A192GCMKW KeyManagementAlgorithm = "A192GCMKW"
	A256GCMKW KeyManagementAlgorithm = "A256GCMKW"

	RSA1_5     KeyManagementAlgorithm = "RSA1_5"
	RSAOAEP    KeyManagementAlgorithm = "RSA-OAEP"
	RSAOAEP256 KeyManagementAlgorithm = "RSA-OAEP-256"
	RSAOAEP384 KeyManagementAlgorithm = "RSA-OAEP-384"
	RSAOAEP512 KeyManagementAlgorithm = "RSA-OAEP-512"

	ECDHES       KeyManagementAlgorithm = "ECDH-ES"
	ECDHESA128KW KeyManagementAlgorithm = "ECDH-ES+A128KW"
	ECDHESA192KW KeyManagementAlgorithm = "ECDH-ES+A192KW"
	ECDHESA256KW KeyManagementAlgorithm = "ECDH-ES+A256KW"

	PBES2HS256A128KW KeyManagementAlgorithm = "PBES2-HS256+A128KW"
	PBES2HS384A192KW KeyManagementAlgorithm = "PBES2-HS384+A192KW"
	PBES2HS512A256KW KeyManagementAlgorithm = "PBES2-HS512+A256KW"
)

// EncryptionAlgorithm names a JWE "enc" (content encryption) algorithm,
// RFC 7518 section 5.
type EncryptionAlgorithm string

const (
	EncryptionUnknown EncryptionAlgorithm = ""

	A128CBCHS256 EncryptionAlgorithm = "A128CBC-HS256"
	A192CBCHS384 EncryptionAlgorithm = "A192CBC-HS384"
	A256CBCHS512 EncryptionAlgorithm = "A256CBC-HS512"

	A128GCM EncryptionAlgorithm = "A128GCM"
	A192GCM EncryptionAlgorithm = "A192GCM"
	A256GCM EncryptionAlgorithm = "A256GCM"
)

// CompressionAlgorithm names a JWE "zip" algorithm, RFC 7516 section 4.1.8.
type CompressionAlgorithm string

const (
	CompressionNone CompressionAlgorithm = ""
	DEF             CompressionAlgorithm = "DEF"
)

// HashName identifies the hash function associated with an algorithm.
type HashName string

const (
	SHA1   HashName = "SHA-1"
	SHA256 HashName = "SHA-256"
	SHA384 HashName = "SHA-384"
	SHA512 HashName = "SHA-512"
)

// SignatureInfo carries the static facts about a SignatureAlgorithm.
type SignatureInfo struct {
	Alg     SignatureAlgorithm
	Family  string // "HMAC", "RSA-PKCS1", "RSA-PSS", "ECDSA", "none"
	Hash    HashName
	MinBits int // minimum key size in bits, 0 if not applicable (ECDSA is fixed by curve).
}

var signatureRegistry = map[SignatureAlgorithm]SignatureInfo{
	HS256: {Alg: HS256, Family: "HMAC", Hash: SHA256, MinBits: 256},
	HS384: {Alg: HS384, Family: "HMAC", Hash: SHA384, MinBits: 384},
	HS512: {Alg: HS512, Family: "HMAC", Hash: SHA512, MinBits: 512},
	RS256: {Alg: RS256, Family: "RSA-PKCS1", Hash: SHA256, MinBits: 2048},
	RS384: {Alg: RS384, Family: "RSA-PKCS1", Hash: SHA384, MinBits: 2048},
	RS512: {Alg: RS512, Family: "RSA-PKCS1", Hash: SHA512, MinBits: 2048},
	PS256: {Alg: PS256, Family: "RSA-PSS", Hash: SHA256, MinBits: 2048},
	PS384: {Alg: PS384, Family: "RSA-PSS", Hash: SHA384, MinBits: 2048},
	PS512: {Alg: PS512, Family: "RSA-PSS", Hash: SHA512, MinBits: 2048},
	ES256: {Alg: ES256, Family: "ECDSA", Hash: SHA256},
	ES384: {Alg: ES384, Family: "ECDSA", Hash: SHA384},
	ES512: {Alg: ES512, Family: "ECDSA", Hash: SHA512},
	None:  {Alg: None, Family: "none"},
}

// LookupSignature returns the registered info for alg, and false for any
// name not in the closed set (callers must fail the parse/write rather
// than guess a fallback).
func LookupSignature(alg SignatureAlgorithm) (SignatureInfo, bool) {
	info, ok := signatureRegistry[alg]
	return info, ok
}

// KeyManagementInfo carries the static facts about a KeyManagementAlgorithm.
type KeyManagementInfo struct {
	Alg         KeyManagementAlgorithm
	Family      string // "dir", "AESKW", "AESGCMKW", "RSAES-PKCS1", "RSA-OAEP", "ECDH-ES", "PBES2"
	KeyBits     int    // wrapping/derived key size in bits, where fixed by the algorithm name.
	Hash        HashName
	WrapsWithKW KeyManagementAlgorithm // for "ECDH-ES+AxxxKW" and PBES2 variants: the AES-KW alg used after derivation.
}

var keyManagementRegistry = map[KeyManagementAlgorithm]KeyManagementInfo{
	Dir:              {Alg: Dir, Family: "dir"},
	A128KW:           {Alg: A128KW, Family: "AESKW", KeyBits: 128},
	A192KW:           {Alg: A192KW, Family: "AESKW", KeyBits: 192},
	A256KW:           {Alg: A256KW, Family: "AESKW", KeyBits: 256},
	A128GCMKW:        {Alg: A128GCMKW, Family: "AESGCMKW", KeyBits: 128},
	A192GCMKW:        {Alg: A192GCMKW, Family: "AESGCMKW", KeyBits: 192},
	A256GCMKW:        {Alg: A256GCMKW, Family: "AESGCMKW", KeyBits: 256},
	RSA1_5:           {Alg: RSA1_5, Family: "RSAES-PKCS1"},
	RSAOAEP:          {Alg: RSAOAEP, Family: "RSA-OAEP", Hash: SHA1},
	RSAOAEP256:       {Alg: RSAOAEP256, Family: "RSA-OAEP", Hash: SHA256},
	RSAOAEP384:       {Alg: RSAOAEP384, Family: "RSA-OAEP", Hash: SHA384},
	RSAOAEP512:       {Alg: RSAOAEP512, Family: "RSA-OAEP", Hash: SHA512},
	ECDHES:           {Alg: ECDHES, Family: "ECDH-ES"},
	ECDHESA128KW:     {Alg: ECDHESA128KW, Family: "ECDH-ES", WrapsWithKW: A128KW, KeyBits: 128},
	ECDHESA192KW:     {Alg: ECDHESA192KW, Family: "ECDH-ES", WrapsWithKW: A192KW, KeyBits: 192},
	ECDHESA256KW:     {Alg: ECDHESA256KW, Family: "ECDH-ES", WrapsWithKW: A256KW, KeyBits: 256},
	PBES2HS256A128KW: {Alg: PBES2HS256A128KW, Family: "PBES2", Hash: SHA256, WrapsWithKW: A128KW, KeyBits: 128},
	PBES2HS384A192KW: {Alg: PBES2HS384A192KW, Family: "PBES2", Hash: SHA384, WrapsWithKW: A192KW, KeyBits: 192},
	PBES2HS512A256KW: {Alg: PBES2HS512A256KW, Family: "PBES2", Hash: SHA512, WrapsWithKW: A256KW, KeyBits: 256},
}

// LookupKeyManagement returns the registered info for alg.
func LookupKeyManagement(alg KeyManagementAlgorithm) (KeyManagementInfo, bool) {
	info, ok := keyManagementRegistry[alg]
	return info, ok
}

// EncryptionInfo carries the static facts about an EncryptionAlgorithm.
type EncryptionInfo struct {
	Alg     EncryptionAlgorithm
	Family  string // "CBC-HMAC" or "GCM"
	CEKBits int    // total content encryption key size, in bits.
	MACBits int    // for CBC-HMAC: the HMAC key half's size, in bits. 0 for GCM.
	Hash    HashName
	IVLen   int // nonce/IV length in bytes.
	TagLen  int // authentication tag length in bytes.
}

var encryptionRegistry = map[EncryptionAlgorithm]EncryptionInfo{
	A128CBCHS256: {Alg: A128CBCHS256, Family: "CBC-HMAC", CEKBits: 256, MACBits: 128, Hash: SHA256, IVLen: 16, TagLen: 16},
	A192CBCHS384: {Alg: A192CBCHS384, Family: "CBC-HMAC", CEKBits: 384, MACBits: 192, Hash: SHA384, IVLen: 16, TagLen: 24},
	A256CBCHS512: {Alg: A256CBCHS512, Family: "CBC-HMAC", CEKBits: 512, MACBits: 256, Hash: SHA512, IVLen: 16, TagLen: 32},
	A128GCM:      {Alg: A128GCM, Family: "GCM", CEKBits: 128, IVLen: 12, TagLen: 16},
	A192GCM:      {Alg: A192GCM, Family: "GCM", CEKBits: 192, IVLen: 12, TagLen: 16},
	A256GCM:      {Alg: A256GCM, Family: "GCM", CEKBits: 256, IVLen: 12, TagLen: 16},
}

// LookupEncryption returns the registered info for enc.
func LookupEncryption(enc EncryptionAlgorithm) (EncryptionInfo, bool) {
	info, ok := encryptionRegistry[enc]
	return info, ok
}

// IsCompressionSupported reports whether zip names a supported
// compression algorithm. The empty string means "no compression" and is
// always considered supported.
func IsCompressionSupported(zip CompressionAlgorithm) bool {
	return zip == CompressionNone || zip == DEF
}
