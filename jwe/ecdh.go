package jwe

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
)

// concatKDF implements the Concat KDF of NIST SP 800-56A section 5.8.1,
// as profiled by RFC 7518 section 4.6.2 for ECDH-ES: round counter
// starting at 1, SHA-256 as the digest, otherInfo built as
// AlgorithmID || PartyUInfo || PartyVInfo || SuppPubInfo.
func concatKDF(z []byte, keyBytes int, algID, apu, apv []byte) []byte {
	out := make([]byte, 0, keyBytes)
	otherInfo := concatKDFOtherInfo(algID, apu, apv, keyBytes*8)

	for counter := uint32(1); len(out) < keyBytes; counter++ {
		h := sha256.New()
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		h.Write(ctr[:])
		h.Write(z)
		h.Write(otherInfo)
		out = append(out, h.Sum(nil)...)
	}
	return out[:keyBytes]
}

func concatKDFOtherInfo(algID, apu, apv []byte, keyDataBits int) []byte {
	var buf []byte
	buf = appendUint32Prefixed(buf, algID)
	buf = appendUint32Prefixed(buf, apu)
	buf = appendUint32Prefixed(buf, apv)

	var suppPubInfo [4]byte
	binary.BigEndian.PutUint32(suppPubInfo[:], uint32(keyDataBits))
	buf = append(buf, suppPubInfo[:]...)
	// SuppPrivInfo is empty for ECDH-ES per RFC 7518.
	return buf
}

func appendUint32Prefixed(buf, data []byte) []byte {
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(data)))
	buf = append(buf, lenPrefix[:]...)
	buf = append(buf, data...)
	return buf
}

// ecdhESDeriver implements the sender side of ECDH-ES (RFC 7518 section
// 4.6). curve selects the key agreement curve (P-256/P-384/P-521; the
// "epk" header rendering covers only these); the recipient's static
// public key must be on that curve.
type ecdhESDeriver struct {
	alg            jwa.KeyManagementAlgorithm
	curve          ecdh.Curve
	recipientPub   *ecdh.PublicKey
	apu, apv       []byte
	kwAlg          jwa.KeyManagementAlgorithm // empty for direct ECDH-ES
	keyBytesDirect int                        // derived key size for direct mode; ignored when kwAlg is set

	ephemeralPriv *ecdh.PrivateKey
}

// ECDHESWrapper creates a KeyWrapper implementing ECDH-ES or
// ECDH-ES+AxxxKW. For plain "ECDH-ES" (direct agreement), encDerivedBits
// must be the bit length of the content encryption key the "enc"
// algorithm requires; for the "+AxxxKW" variants it is ignored, since the
// derived key size is fixed by the KW algorithm.
//
// The returned KeyWrapper also implements HeaderUpdater: the writer
// pipeline must call Params after WrapKey and merge "epk" (and "apu"/
// "apv" when set) into the JWE protected header, per RFC 7518 section
// 4.6.1.
func ECDHESWrapper(alg jwa.KeyManagementAlgorithm, curve ecdh.Curve, recipientPub *ecdh.PublicKey, apu, apv []byte, encDerivedBits int) (KeyWrapper, error) {
	info, ok := jwa.LookupKeyManagement(alg)
	if !ok || info.Family != "ECDH-ES" {
		return nil, fmt.Errorf("jwe: not an ECDH-ES algorithm: %s", alg)
	}

	ephemeralPriv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	d := &ecdhESDeriver{
		alg:            alg,
		curve:          curve,
		recipientPub:   recipientPub,
		apu:            apu,
		apv:            apv,
		kwAlg:          info.WrapsWithKW,
		keyBytesDirect: encDerivedBits / 8,
		ephemeralPriv:  ephemeralPriv,
	}
	return &ecdhESWrapperAdapter{d: d}, nil
}

// ecdhESWrapperAdapter adapts ecdhESDeriver to KeyWrapper, delegating the
// actual key wrap to an inner AES-KW KeyWrapper once the shared key is
// derived, for the "+AxxxKW" variants.
type ecdhESWrapperAdapter struct {
	d      *ecdhESDeriver
	derive []byte // derived key, cached after WrapKey for DerivedDirectKey
}

func (a *ecdhESWrapperAdapter) Alg() jwa.KeyManagementAlgorithm { return a.d.alg }

func (a *ecdhESWrapperAdapter) WrapKey(cek []byte) ([]byte, error) {
	z, err := a.d.ephemeralPriv.ECDH(a.d.recipientPub)
	if err != nil {
		return nil, err
	}

	if a.d.kwAlg == "" {
		derived := concatKDF(z, a.d.keyBytesDirect, []byte(a.d.alg), a.d.apu, a.d.apv)
		a.derive = derived
		if len(cek) != 0 {
			return nil, fmt.Errorf("jwe: direct ECDH-ES key agreement does not wrap a caller-supplied key")
		}
		return []byte{}, nil
	}

	kwInfo, _ := jwa.LookupKeyManagement(a.d.kwAlg)
	derived := concatKDF(z, kwInfo.KeyBits/8, []byte(a.d.kwAlg), a.d.apu, a.d.apv)
	a.derive = derived

	kw, err := newAESKW(a.d.kwAlg, derived)
	if err != nil {
		return nil, err
	}
	return kw.WrapKey(cek)
}

// DerivedDirectKey returns the key derived for direct ("ECDH-ES" without
// a KW suffix) mode. Callers use this as the content encryption key
// instead of generating a random one. Valid only after WrapKey.
func (a *ecdhESWrapperAdapter) DerivedDirectKey() []byte { return a.derive }

func (a *ecdhESWrapperAdapter) Params() map[string]any {
	params := map[string]any{
		"epk": ecdhPublicJWK(a.d.curve, a.d.ephemeralPriv.PublicKey()),
	}
	if len(a.d.apu) > 0 {
		params["apu"] = base64url.EncodeToString(a.d.apu)
	}
	if len(a.d.apv) > 0 {
		params["apv"] = base64url.EncodeToString(a.d.apv)
	}
	return params
}

// ecdhESUnwrapper implements the recipient side of ECDH-ES.
type ecdhESUnwrapper struct {
	alg          jwa.KeyManagementAlgorithm
	curve        ecdh.Curve
	privateKey   *ecdh.PrivateKey
	ephemeralPub *ecdh.PublicKey
	apu, apv     []byte
	kwAlg        jwa.KeyManagementAlgorithm
	directBits   int
}

func (e *ecdhESUnwrapper) Alg() jwa.KeyManagementAlgorithm { return e.alg }

func (e *ecdhESUnwrapper) UnwrapKey(encryptedKey []byte, cekBytes int) ([]byte, error) {
	z, err := e.privateKey.ECDH(e.ephemeralPub)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	if e.kwAlg == "" {
		bits := e.directBits
		if cekBytes > 0 {
			bits = cekBytes * 8
		}
		return concatKDF(z, bits/8, []byte(e.alg), e.apu, e.apv), nil
	}

	kwInfo, _ := jwa.LookupKeyManagement(e.kwAlg)
	derived := concatKDF(z, kwInfo.KeyBits/8, []byte(e.kwAlg), e.apu, e.apv)
	kw, err := newAESKW(e.kwAlg, derived)
	if err != nil {
		return nil, err
	}
	return kw.UnwrapKey(encryptedKey, cekBytes)
}

// ECDHESUnwrapper creates a KeyUnwrapper implementing ECDH-ES or
// ECDH-ES+AxxxKW. epk is the sender's ephemeral public key, read from
// the JWE header's "epk" member.
func ECDHESUnwrapper(alg jwa.KeyManagementAlgorithm, curve ecdh.Curve, privateKey *ecdh.PrivateKey, epk *ecdh.PublicKey, apu, apv []byte, directDerivedBits int) (KeyUnwrapper, error) {
	info, ok := jwa.LookupKeyManagement(alg)
	if !ok || info.Family != "ECDH-ES" {
		return nil, fmt.Errorf("jwe: not an ECDH-ES algorithm: %s", alg)
	}
	return &ecdhESUnwrapper{
		alg:          alg,
		curve:        curve,
		privateKey:   privateKey,
		ephemeralPub: epk,
		apu:          apu,
		apv:          apv,
		kwAlg:        info.WrapsWithKW,
		directBits:   directDerivedBits,
	}, nil
}

// ecdhPublicJWK renders an ephemeral public key as a JWK map suitable
// for the JWE header's "epk" member (RFC 7518 section 4.6.1.1). Only
// the NIST curves are supported; X25519/X448 use the "OKP" key type
// (RFC 8037), which this module's jwk.Key model does not cover.
func ecdhPublicJWK(curve ecdh.Curve, pub *ecdh.PublicKey) map[string]any {
	raw := pub.Bytes()
	// Uncompressed point encoding: 0x04 || X || Y, each coordinate
	// sized to the curve's field width.
	coordLen := (len(raw) - 1) / 2
	x := raw[1 : 1+coordLen]
	y := raw[1+coordLen:]

	return map[string]any{
		"kty": "EC",
		"crv": crvName(curve),
		"x":   base64url.EncodeToString(x),
		"y":   base64url.EncodeToString(y),
	}
}

func crvName(curve ecdh.Curve) string {
	switch curve {
	case ecdh.P256():
		return "P-256"
	case ecdh.P384():
		return "P-384"
	case ecdh.P521():
		return "P-521"
	default:
		return ""
	}
}
