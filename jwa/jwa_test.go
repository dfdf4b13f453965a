package jwa

import "testing"

func TestLookupSignature(t *testing.T) {
	info, ok := LookupSignature(HS256)
	if !ok {
		t.Fatal("HS256 not registered")
	}
	if info.Family != "HMAC" || info.Hash != SHA256 || info.MinBits != 256 {
		t.Errorf("unexpected info: %+v", info)
	}

	if _, ok := LookupSignature("HS257"); ok {
		t.Error("unknown algorithm must not resolve")
	}
	if _, ok := LookupSignature(SignatureUnknown); ok {
		t.Error("empty algorithm must not resolve")
	}
}

func TestLookupKeyManagement(t *testing.T) {
	for alg, family := range map[KeyManagementAlgorithm]string{
		Dir:              "dir",
		A128KW:           "AESKW",
		A256GCMKW:        "AESGCMKW",
		RSA1_5:           "RSAES-PKCS1",
		RSAOAEP256:       "RSA-OAEP",
		ECDHES:           "ECDH-ES",
		ECDHESA128KW:     "ECDH-ES",
		PBES2HS256A128KW: "PBES2",
	} {
		info, ok := LookupKeyManagement(alg)
		if !ok {
			t.Errorf("%s not registered", alg)
			continue
		}
		if info.Family != family {
			t.Errorf("%s family = %s, want %s", alg, info.Family, family)
		}
	}

	info, _ := LookupKeyManagement(ECDHESA256KW)
	if info.WrapsWithKW != A256KW {
		t.Errorf("ECDH-ES+A256KW wraps with %s", info.WrapsWithKW)
	}

	if _, ok := LookupKeyManagement("A129KW"); ok {
		t.Error("unknown algorithm must not resolve")
	}
}

func TestLookupEncryption(t *testing.T) {
	info, ok := LookupEncryption(A128CBCHS256)
	if !ok {
		t.Fatal("A128CBC-HS256 not registered")
	}
	if info.CEKBits != 256 || info.IVLen != 16 || info.TagLen != 16 || info.Family != "CBC-HMAC" {
		t.Errorf("unexpected info: %+v", info)
	}

	info, ok = LookupEncryption(A256GCM)
	if !ok {
		t.Fatal("A256GCM not registered")
	}
	if info.CEKBits != 256 || info.IVLen != 12 || info.TagLen != 16 || info.Family != "GCM" {
		t.Errorf("unexpected info: %+v", info)
	}

	if _, ok := LookupEncryption("A128CBC-HS255"); ok {
		t.Error("unknown algorithm must not resolve")
	}
}

func TestIsCompressionSupported(t *testing.T) {
	if !IsCompressionSupported(CompressionNone) {
		t.Error("no compression must be supported")
	}
	if !IsCompressionSupported(DEF) {
		t.Error("DEF must be supported")
	}
	if IsCompressionSupported("GZ") {
		t.Error("GZ must not be supported")
	}
}
