package jwt

import (
	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/internal/jsonidx"
	"github.com/halimath/compactjose/internal/pool"
	"github.com/halimath/compactjose/internal/tokenize"
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jwk"
	"github.com/halimath/compactjose/jwterr"
)

// gcmkwUnwrapperKey is implemented by keys that can produce an AES-GCM-
// KW KeyUnwrapper given the iv/tag the JWE header carries (the generic
// jwk.KeyUnwrapperKey interface has no room for them). jwk.SymmetricKey
// satisfies this via its CreateGCMKWUnwrapper method.
type gcmkwUnwrapperKey interface {
	CreateGCMKWUnwrapper(alg jwa.KeyManagementAlgorithm, iv, tag []byte) (jwe.KeyUnwrapper, error)
}

// ecdhUnwrapperKey is implemented by keys that can produce an ECDH-ES
// KeyUnwrapper given the sender's ephemeral public key and optional
// apu/apv. jwk.ECDSAPrivateKey satisfies this.
type ecdhUnwrapperKey interface {
	CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm, epk *jwk.ECDSAPublicKey, apu, apv []byte, directDerivedBits int) (jwe.KeyUnwrapper, error)
}

// pbes2UnwrapperKey is implemented by jwk.PasswordKey, given the
// p2s/p2c parameters the JWE header carries.
type pbes2UnwrapperKey interface {
	CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm, p2s []byte, p2c int) (jwe.KeyUnwrapper, error)
}

// Parse decodes, verifies or decrypts, and validates a compact-
// serialized JOSE token against policy: size check, tokenize, header
// parse, critical-header check, signature verification or
// unwrap-decrypt-decompress, claim validation, and nested-token
// recursion, in that order, failing fast on the first error. The
// returned Document must be disposed by the caller.
func Parse(data []byte, policy *Policy) (*Document, error) {
	if len(data) > policy.MaxTokenSize {
		return nil, jwterr.New(jwterr.SizeLimitExceeded)
	}

	segs, err := tokenize.Split(data)
	if err != nil {
		return nil, err
	}

	ch, err := resolveHeader(data, segs[0], policy)
	if err != nil {
		return nil, err
	}

	doc := &Document{headerBuf: ch.buf, headerIdx: ch.idx}
	h := doc.Header()

	if len(segs) == 3 {
		return parseJWS(data, segs, doc, h, policy)
	}
	return parseJWE(data, segs, doc, h, policy)
}

// resolveHeader decodes and parses the header segment, consulting (and
// populating) the policy's header cache, and runs the policy's
// critical-header handlers on every cache miss; only headers that pass
// them are cached. A cached
// header's validity depends on the policy that produced it, so each
// Policy owns its own cache.
func resolveHeader(data []byte, headerSeg tokenize.Segment, policy *Policy) (*cachedHeader, error) {
	raw := headerSeg.Slice(data)
	key := string(raw)
	if !policy.cacheDisabled {
		if ch, ok := policy.headerCache.Get(key); ok {
			return ch, nil
		}
	}

	buf := make([]byte, base64url.DecodedLen(len(raw)))
	n, err := base64url.Decode(buf, raw)
	if err != nil {
		return nil, jwterr.WrapParam(jwterr.MalformedToken, "header", err)
	}
	buf = buf[:n]

	idx, err := jsonidx.Parse(buf)
	if err != nil {
		return nil, err
	}
	if idx.Kind(jsonidx.Element(idx.Root)) != jsonidx.KindObject {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "header")
	}

	tmpDoc := &Document{headerBuf: buf, headerIdx: idx}
	if err := checkCriticalHeader(tmpDoc.Header(), policy); err != nil {
		return nil, err
	}

	ch := &cachedHeader{buf: buf, idx: idx}
	if !policy.cacheDisabled {
		policy.headerCache.Set(key, ch)
	}
	return ch, nil
}

func checkCriticalHeader(h *Header, policy *Policy) error {
	names, err := h.Crit()
	if err != nil {
		return err
	}
	for _, name := range names {
		if !h.Has(name) {
			return jwterr.WithParam(jwterr.InvalidHeader, name)
		}
		handler, ok := policy.criticalHandlers[name]
		if !ok {
			return jwterr.WithParam(jwterr.CriticalHeaderMissingHandler, name)
		}
		if err := handler(h); err != nil {
			return jwterr.WrapParam(jwterr.CriticalHeaderRejected, name, err)
		}
	}
	return nil
}

func decodeSegment(data []byte, seg tokenize.Segment, name string) ([]byte, error) {
	raw := seg.Slice(data)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]byte, base64url.DecodedLen(len(raw)))
	n, err := base64url.Decode(out, raw)
	if err != nil {
		return nil, jwterr.WrapParam(jwterr.MalformedToken, name, err)
	}
	return out[:n], nil
}

func parseJWS(data []byte, segs []tokenize.Segment, doc *Document, h *Header, policy *Policy) (*Document, error) {
	algName := h.Alg()
	if algName == "" {
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}
	alg := jwa.SignatureAlgorithm(algName)
	info, ok := jwa.LookupSignature(alg)
	if !ok {
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}

	signature, err := decodeSegment(data, segs[2], "signature")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	signingInput := data[:segs[1].Start+segs[1].Length]

	if info.Family == "none" {
		if !policy.AllowUnsecured() {
			doc.Dispose()
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
		}
		if len(signature) != 0 {
			doc.Dispose()
			return nil, jwterr.New(jwterr.MalformedToken)
		}
	} else {
		if err := verifySignature(alg, h.Kid(), signingInput, signature, policy); err != nil {
			doc.Dispose()
			return nil, err
		}
	}

	payloadRaw, err := decodeSegment(data, segs[1], "payload")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	payloadBuf := pool.Rent(len(payloadRaw))
	copy(payloadBuf.Bytes(), payloadRaw)

	return finishDocument(doc, payloadBuf, payloadBuf.Bytes(), h, policy)
}

func verifySignature(alg jwa.SignatureAlgorithm, kid string, signingInput, signature []byte, policy *Policy) error {
	if policy.Keys == nil {
		return jwterr.New(jwterr.SignatureKeyNotFound)
	}
	candidates := policy.Keys.Keys(kid)
	if len(candidates) == 0 {
		return jwterr.New(jwterr.SignatureKeyNotFound)
	}
	for _, k := range candidates {
		vk, ok := k.(jwk.VerifierKey)
		if !ok {
			continue
		}
		verifier, err := vk.CreateVerifier(alg)
		if err != nil {
			continue
		}
		if err := verifier.Verify(signingInput, signature); err == nil {
			return nil
		}
	}
	return jwterr.New(jwterr.SignatureValidationFailed)
}

func parseJWE(data []byte, segs []tokenize.Segment, doc *Document, h *Header, policy *Policy) (*Document, error) {
	encName := h.Enc()
	if encName == "" {
		doc.Dispose()
		return nil, jwterr.New(jwterr.MissingEncryptionAlgorithm)
	}
	encAlg := jwa.EncryptionAlgorithm(encName)
	encInfo, ok := jwa.LookupEncryption(encAlg)
	if !ok {
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "enc")
	}

	algName := h.Alg()
	if algName == "" {
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}
	kmAlg := jwa.KeyManagementAlgorithm(algName)
	kmInfo, ok := jwa.LookupKeyManagement(kmAlg)
	if !ok {
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}

	encryptedKey, err := decodeSegment(data, segs[1], "encrypted_key")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	iv, err := decodeSegment(data, segs[2], "iv")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	ciphertext, err := decodeSegment(data, segs[3], "ciphertext")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	tag, err := decodeSegment(data, segs[4], "tag")
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	aad := segs[0].Slice(data)

	cek, err := resolveCEK(h, kmAlg, kmInfo, encInfo, encryptedKey, policy)
	if err != nil {
		doc.Dispose()
		return nil, err
	}
	defer zeroize(cek)

	var plaintext []byte
	switch encInfo.Family {
	case "CBC-HMAC":
		_, dec, derr := jwe.CBCHMAC(encAlg)
		if derr != nil {
			doc.Dispose()
			return nil, jwterr.Wrap(jwterr.InvalidHeader, derr)
		}
		plaintext, err = dec.Open(cek, iv, ciphertext, tag, aad)
	case "GCM":
		_, dec, derr := jwe.GCM(encAlg)
		if derr != nil {
			doc.Dispose()
			return nil, jwterr.Wrap(jwterr.InvalidHeader, derr)
		}
		plaintext, err = dec.Open(cek, iv, ciphertext, tag, aad)
	default:
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "enc")
	}
	if err != nil {
		doc.Dispose()
		return nil, jwterr.New(jwterr.DecryptionFailed)
	}

	switch zip := h.Zip(); zip {
	case "":
	case string(jwa.DEF):
		out, derr := jwe.DEFCompressor().Decompress(plaintext, policy.MaxDecompressedSize)
		if derr != nil {
			doc.Dispose()
			return nil, jwterr.Wrap(jwterr.DecompressionFailed, derr)
		}
		plaintext = out
	default:
		doc.Dispose()
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "zip")
	}

	payloadBuf := pool.Rent(len(plaintext))
	copy(payloadBuf.Bytes(), plaintext)

	return finishDocument(doc, payloadBuf, payloadBuf.Bytes(), h, policy)
}

// resolveCEK recovers the content encryption key by dispatching on the
// key management algorithm's family, trying each candidate key in turn
// and taking the first that both produces an unwrapper and successfully
// unwraps.
func resolveCEK(h *Header, alg jwa.KeyManagementAlgorithm, kmInfo jwa.KeyManagementInfo, encInfo jwa.EncryptionInfo, encryptedKey []byte, policy *Policy) ([]byte, error) {
	cekBytes := encInfo.CEKBits / 8
	kid := h.Kid()

	switch kmInfo.Family {
	case "dir", "AESKW", "RSAES-PKCS1", "RSA-OAEP":
		candidates := requireKeys(policy, kid)
		if candidates == nil {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		for _, k := range candidates {
			uk, ok := k.(jwk.KeyUnwrapperKey)
			if !ok {
				continue
			}
			unwrapper, err := uk.CreateKeyUnwrapper(alg)
			if err != nil {
				continue
			}
			if cek, err := unwrapper.UnwrapKey(encryptedKey, cekBytes); err == nil {
				return cek, nil
			}
		}
		return nil, jwterr.New(jwterr.DecryptionFailed)

	case "AESGCMKW":
		iv, err := headerBase64Member(h, "iv")
		if err != nil {
			return nil, err
		}
		tag, err := headerBase64Member(h, "tag")
		if err != nil {
			return nil, err
		}
		candidates := requireKeys(policy, kid)
		if candidates == nil {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		for _, k := range candidates {
			gk, ok := k.(gcmkwUnwrapperKey)
			if !ok {
				continue
			}
			unwrapper, err := gk.CreateGCMKWUnwrapper(alg, iv, tag)
			if err != nil {
				continue
			}
			if cek, err := unwrapper.UnwrapKey(encryptedKey, cekBytes); err == nil {
				return cek, nil
			}
		}
		return nil, jwterr.New(jwterr.DecryptionFailed)

	case "ECDH-ES":
		epkEl := h.Get("epk")
		if !epkEl.Valid() {
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "epk")
		}
		epkRaw, err := epkEl.Raw()
		if err != nil {
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "epk")
		}
		epkKey, err := jwk.UnmarshalKey(epkRaw)
		if err != nil {
			return nil, jwterr.WrapParam(jwterr.InvalidHeader, "epk", err)
		}
		epk, ok := epkKey.(*jwk.ECDSAPublicKey)
		if !ok {
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "epk")
		}

		var apu, apv []byte
		if el := h.Get("apu"); el.Valid() {
			if s, err := el.String(); err == nil {
				apu, _ = base64url.DecodeString(s)
			}
		}
		if el := h.Get("apv"); el.Valid() {
			if s, err := el.String(); err == nil {
				apv, _ = base64url.DecodeString(s)
			}
		}

		candidates := requireKeys(policy, kid)
		if candidates == nil {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		for _, k := range candidates {
			ek, ok := k.(ecdhUnwrapperKey)
			if !ok {
				continue
			}
			unwrapper, err := ek.CreateKeyUnwrapper(alg, epk, apu, apv, encInfo.CEKBits)
			if err != nil {
				continue
			}
			if cek, err := unwrapper.UnwrapKey(encryptedKey, cekBytes); err == nil {
				return cek, nil
			}
		}
		return nil, jwterr.New(jwterr.DecryptionFailed)

	case "PBES2":
		if len(policy.Passwords) == 0 {
			return nil, jwterr.New(jwterr.EncryptionKeyNotFound)
		}
		p2s, err := headerBase64Member(h, "p2s")
		if err != nil {
			return nil, err
		}
		p2cEl := h.Get("p2c")
		if !p2cEl.Valid() {
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "p2c")
		}
		p2c, err := p2cEl.Int64()
		if err != nil {
			return nil, jwterr.WithParam(jwterr.InvalidHeader, "p2c")
		}

		for _, pw := range policy.Passwords {
			unwrapper, err := pw.CreateKeyUnwrapper(alg, p2s, int(p2c))
			if err != nil {
				continue
			}
			if cek, err := unwrapper.UnwrapKey(encryptedKey, cekBytes); err == nil {
				return cek, nil
			}
		}
		return nil, jwterr.New(jwterr.DecryptionFailed)

	default:
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "alg")
	}
}

func requireKeys(policy *Policy, kid string) []jwk.Key {
	if policy.Keys == nil {
		return nil
	}
	keys := policy.Keys.Keys(kid)
	if len(keys) == 0 {
		return nil
	}
	return keys
}

func headerBase64Member(h *Header, name string) ([]byte, error) {
	el := h.Get(name)
	if !el.Valid() {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, name)
	}
	s, err := el.String()
	if err != nil {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, name)
	}
	decoded, err := base64url.DecodeString(s)
	if err != nil {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, name)
	}
	return decoded, nil
}

// finishDocument parses the recovered plaintext as the token's claims
// and validates them, unless "cty": "JWT" marks the plaintext as a
// nested compact token, in which case it is either recursed into or
// surfaced raw.
func finishDocument(doc *Document, payloadBuf *pool.Buffer, plaintext []byte, h *Header, policy *Policy) (*Document, error) {
	if h.Cty() == "JWT" {
		if policy.IgnoreNestedToken() {
			doc.payloadBuf = payloadBuf
			doc.nestedRaw = string(plaintext)
			return doc, nil
		}
		nested, err := Parse(plaintext, policy)
		payloadBuf.Release()
		if err != nil {
			doc.Dispose()
			return nil, err
		}
		doc.nested = nested
		return doc, nil
	}

	idx, err := jsonidx.Parse(plaintext)
	if err != nil {
		payloadBuf.Release()
		doc.Dispose()
		return nil, err
	}
	doc.payloadBuf = payloadBuf
	doc.payloadIdx = idx

	if err := validateClaims(doc.Payload(), policy); err != nil {
		doc.Dispose()
		return nil, err
	}

	return doc, nil
}
