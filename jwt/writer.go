package jwt

import (
	"crypto/rand"
	"fmt"
	"io"
	"sort"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/internal/jsonidx"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jwk"
	"github.com/halimath/compactjose/jwterr"
)

// Descriptor is the authoring counterpart of a Document: a mutable
// description of a token to emit. A Descriptor may be modified freely
// until Encode is called; the compact serialization it produces is
// immutable.
type Descriptor interface {
	Encode() ([]byte, error)
}

// Write serializes desc into its compact form.
func Write(desc Descriptor) ([]byte, error) {
	return desc.Encode()
}

// JWSDescriptor describes a signed token: header members, claims, and
// the signing key and algorithm. The zero value is not usable; at least
// Algorithm and (except for "none") Key must be set.
type JWSDescriptor struct {
	Algorithm jwa.SignatureAlgorithm

	// Key signs the token. It must support Algorithm. Must be nil when
	// Algorithm is "none" (an unsecured JWS carries an empty signature
	// segment) and non-nil otherwise.
	Key jwk.SignerKey

	KeyID       string
	Type        string
	ContentType string

	// ExtraHeader members are emitted after the registered members, in
	// slice order.
	ExtraHeader []jsonidx.Member

	// Claims is serialized as the payload JSON unless RawPayload is set.
	Claims any

	// RawPayload, when non-nil, is used verbatim as the payload bytes.
	RawPayload []byte
}

func (d *JWSDescriptor) payloadBytes() ([]byte, error) {
	if d.RawPayload != nil {
		return d.RawPayload, nil
	}
	if d.Claims == nil {
		return nil, fmt.Errorf("jwt: descriptor carries neither claims nor a raw payload")
	}
	return jsonidx.WriteCompact(d.Claims)
}

func (d *JWSDescriptor) headerMembers() []jsonidx.Member {
	members := []jsonidx.Member{{Key: "alg", Value: string(d.Algorithm)}}
	if d.ContentType != "" {
		members = append(members, jsonidx.Member{Key: "cty", Value: d.ContentType})
	}
	if d.Type != "" {
		members = append(members, jsonidx.Member{Key: "typ", Value: d.Type})
	}
	if d.KeyID != "" {
		members = append(members, jsonidx.Member{Key: "kid", Value: d.KeyID})
	}
	return append(members, d.ExtraHeader...)
}

// Encode emits the compact serialization
// BASE64URL(header) "." BASE64URL(payload) "." BASE64URL(signature),
// signing the first two segments joined by '.' per RFC 7515 section 5.1.
func (d *JWSDescriptor) Encode() ([]byte, error) {
	info, ok := jwa.LookupSignature(d.Algorithm)
	if !ok {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}

	payload, err := d.payloadBytes()
	if err != nil {
		return nil, err
	}

	header, err := jsonidx.WriteHeader(nil, d.headerMembers())
	if err != nil {
		return nil, jwterr.WrapParam(jwterr.InvalidHeader, "header", err)
	}

	out := make([]byte, 0, base64url.EncodedLen(len(header))+base64url.EncodedLen(len(payload))+2)
	out = append(out, base64url.EncodeToString(header)...)
	out = append(out, '.')
	out = append(out, base64url.EncodeToString(payload)...)

	var signature []byte
	if info.Family == "none" {
		if d.Key != nil {
			return nil, fmt.Errorf("jwt: alg none must not carry a signing key")
		}
	} else {
		if d.Key == nil {
			return nil, jwterr.New(jwterr.SignatureKeyNotFound)
		}
		signer, err := d.Key.CreateSigner(d.Algorithm)
		if err != nil {
			return nil, err
		}
		signature, err = signer.Sign(out)
		if err != nil {
			return nil, jwterr.Wrap(jwterr.SignatureValidationFailed, err)
		}
	}

	out = append(out, '.')
	out = append(out, base64url.EncodeToString(signature)...)
	return out, nil
}

// keyWrapperSource is the common key-wrap capability shared by
// jwk.SymmetricKey, jwk.RSAPublicKey and jwk.PasswordKey.
type keyWrapperSource interface {
	CreateKeyWrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyWrapper, error)
}

// ecdhWrapperSource is jwk.ECDSAPublicKey's key-wrap capability, which
// additionally carries apu/apv and the direct-mode derived key size.
type ecdhWrapperSource interface {
	CreateKeyWrapper(alg jwa.KeyManagementAlgorithm, apu, apv []byte, encDerivedBits int) (jwe.KeyWrapper, error)
}

// directKeyer is implemented by the "dir" and direct "ECDH-ES" wrappers:
// the content encryption key is not random but determined by the key
// management material itself.
type directKeyer interface {
	DerivedDirectKey() []byte
}

// JWEDescriptor describes an encrypted token: header members, the
// plaintext (raw bytes, claims to serialize, or a nested JWSDescriptor),
// and the recipient's key management material.
type JWEDescriptor struct {
	Algorithm   jwa.KeyManagementAlgorithm
	Encryption  jwa.EncryptionAlgorithm
	Compression jwa.CompressionAlgorithm

	// Key is the recipient's key management material: a
	// *jwk.SymmetricKey (dir, AES-KW, AES-GCM-KW), *jwk.RSAPublicKey
	// (RSA1_5, RSA-OAEP*), *jwk.ECDSAPublicKey (ECDH-ES*) or
	// *jwk.PasswordKey (PBES2*).
	Key any

	KeyID       string
	Type        string
	ContentType string

	// AgreementPartyUInfo/AgreementPartyVInfo become the "apu"/"apv"
	// header parameters for the ECDH-ES family.
	AgreementPartyUInfo []byte
	AgreementPartyVInfo []byte

	ExtraHeader []jsonidx.Member

	// Nested, when non-nil, is encoded first and its compact form
	// becomes the plaintext; "cty" is forced to "JWT".
	Nested *JWSDescriptor

	// Claims is serialized as the plaintext unless Nested or
	// RawPlaintext is set.
	Claims any

	// RawPlaintext, when non-nil, is encrypted verbatim.
	RawPlaintext []byte
}

func (d *JWEDescriptor) plaintextBytes() ([]byte, string, error) {
	if d.Nested != nil {
		inner, err := d.Nested.Encode()
		if err != nil {
			return nil, "", err
		}
		return inner, "JWT", nil
	}
	if d.RawPlaintext != nil {
		return d.RawPlaintext, d.ContentType, nil
	}
	if d.Claims == nil {
		return nil, "", fmt.Errorf("jwt: descriptor carries neither claims, a raw plaintext, nor a nested descriptor")
	}
	plaintext, err := jsonidx.WriteCompact(d.Claims)
	return plaintext, d.ContentType, err
}

func (d *JWEDescriptor) createWrapper(encInfo jwa.EncryptionInfo) (jwe.KeyWrapper, error) {
	if ek, ok := d.Key.(ecdhWrapperSource); ok {
		return ek.CreateKeyWrapper(d.Algorithm, d.AgreementPartyUInfo, d.AgreementPartyVInfo, encInfo.CEKBits)
	}
	if wk, ok := d.Key.(keyWrapperSource); ok {
		return wk.CreateKeyWrapper(d.Algorithm)
	}
	return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
}

// Encode emits the compact serialization
// BASE64URL(header) "." BASE64URL(encrypted_key) "." BASE64URL(iv) "."
// BASE64URL(ciphertext) "." BASE64URL(tag) per RFC 7516 section 5.1,
// with the base64url-encoded header bytes as the AAD. The header is
// final before the content is encrypted; wrap-time parameters (epk,
// apu/apv, p2s/p2c, iv/tag) are collected from the wrapper first.
func (d *JWEDescriptor) Encode() ([]byte, error) {
	kmInfo, ok := jwa.LookupKeyManagement(d.Algorithm)
	if !ok {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}
	encInfo, ok := jwa.LookupEncryption(d.Encryption)
	if !ok {
		if d.Encryption == jwa.EncryptionUnknown {
			return nil, jwterr.New(jwterr.MissingEncryptionAlgorithm)
		}
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "enc")
	}
	if !jwa.IsCompressionSupported(d.Compression) {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "zip")
	}

	plaintext, cty, err := d.plaintextBytes()
	if err != nil {
		return nil, err
	}

	wrapper, err := d.createWrapper(encInfo)
	if err != nil {
		return nil, err
	}

	cekLen := encInfo.CEKBits / 8
	var cek, encryptedKey []byte
	switch {
	case kmInfo.Family == "dir":
		dk, ok := wrapper.(directKeyer)
		if !ok {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		cek = dk.DerivedDirectKey()
		defer zeroize(cek)
		if len(cek) != cekLen {
			return nil, fmt.Errorf("jwt: dir key management requires a %d byte key for %s, got %d", cekLen, d.Encryption, len(cek))
		}
		if encryptedKey, err = wrapper.WrapKey(cek); err != nil {
			return nil, err
		}
	case kmInfo.Family == "ECDH-ES" && kmInfo.WrapsWithKW == jwa.KeyManagementUnknown:
		dk, ok := wrapper.(directKeyer)
		if !ok {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		if encryptedKey, err = wrapper.WrapKey(nil); err != nil {
			return nil, err
		}
		cek = dk.DerivedDirectKey()
		defer zeroize(cek)
	default:
		cek = make([]byte, cekLen)
		if _, err := io.ReadFull(rand.Reader, cek); err != nil {
			return nil, err
		}
		defer zeroize(cek)
		if encryptedKey, err = wrapper.WrapKey(cek); err != nil {
			return nil, err
		}
	}

	members := []jsonidx.Member{
		{Key: "alg", Value: string(d.Algorithm)},
		{Key: "enc", Value: string(d.Encryption)},
	}
	if d.Compression != jwa.CompressionNone {
		members = append(members, jsonidx.Member{Key: "zip", Value: string(d.Compression)})
	}
	if cty != "" {
		members = append(members, jsonidx.Member{Key: "cty", Value: cty})
	}
	if d.Type != "" {
		members = append(members, jsonidx.Member{Key: "typ", Value: d.Type})
	}
	if d.KeyID != "" {
		members = append(members, jsonidx.Member{Key: "kid", Value: d.KeyID})
	}
	if hu, ok := wrapper.(jwe.HeaderUpdater); ok {
		params := hu.Params()
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			members = append(members, jsonidx.Member{Key: name, Value: params[name]})
		}
	}
	members = append(members, d.ExtraHeader...)

	header, err := jsonidx.WriteHeader(nil, members)
	if err != nil {
		return nil, jwterr.WrapParam(jwterr.InvalidHeader, "header", err)
	}

	if d.Compression == jwa.DEF {
		plaintext, err = jwe.DEFCompressor().Compress(plaintext)
		if err != nil {
			return nil, jwterr.Wrap(jwterr.DecompressionFailed, err)
		}
	}

	aad := []byte(base64url.EncodeToString(header))

	var iv, ciphertext, tag []byte
	switch encInfo.Family {
	case "CBC-HMAC":
		enc, _, cerr := jwe.CBCHMAC(d.Encryption)
		if cerr != nil {
			return nil, cerr
		}
		iv, ciphertext, tag, err = enc.Seal(cek, plaintext, aad)
	case "GCM":
		enc, _, cerr := jwe.GCM(d.Encryption)
		if cerr != nil {
			return nil, cerr
		}
		iv, ciphertext, tag, err = enc.Seal(cek, plaintext, aad)
	default:
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "enc")
	}
	if err != nil {
		return nil, jwterr.Wrap(jwterr.DecryptionFailed, err)
	}

	out := make([]byte, 0, len(aad)+base64url.EncodedLen(len(encryptedKey)+len(iv)+len(ciphertext)+len(tag))+4)
	out = append(out, aad...)
	out = append(out, '.')
	out = append(out, base64url.EncodeToString(encryptedKey)...)
	out = append(out, '.')
	out = append(out, base64url.EncodeToString(iv)...)
	out = append(out, '.')
	out = append(out, base64url.EncodeToString(ciphertext)...)
	out = append(out, '.')
	out = append(out, base64url.EncodeToString(tag)...)
	return out, nil
}

// zeroize overwrites secret key material before its buffer is released
// to the garbage collector.
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
