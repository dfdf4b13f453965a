package jws

import (
	"encoding/base64"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

var enc = base64.RawURLEncoding

func TestHS256(t *testing.T) {
	sv := HS256([]byte("secret"))

	if sv.Alg() != jwa.HS256 {
		t.Error(sv.Alg())
	}

	data := []byte("hello, world")
	sig, err := sv.Sign(data)
	if err != nil {
		t.Fatal(err)
	}

	if s := enc.EncodeToString(sig); s != "cLVE7E3Y71-ng0_laMdt9fPPdbb93vE9eeJCjoda21s" {
		t.Error(s)
	}

	if err := sv.Verify(data, sig); err != nil {
		t.Error(err)
	}
}

func TestHS384(t *testing.T) {
	sv := HS384([]byte("secret"))
	data := []byte("hello, world")

	sig, err := sv.Sign(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := sv.Verify(data, sig); err != nil {
		t.Error(err)
	}
}

func TestHS512(t *testing.T) {
	sv := HS512([]byte("secret"))
	data := []byte("hello, world")

	sig, err := sv.Sign(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := sv.Verify(data, sig); err != nil {
		t.Error(err)
	}
}

func TestHS256RejectsTamperedSignature(t *testing.T) {
	sv := HS256([]byte("secret"))
	data := []byte("hello, world")

	sig, err := sv.Sign(data)
	if err != nil {
		t.Fatal(err)
	}
	sig[0] ^= 0xff

	if err := sv.Verify(data, sig); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestHSSignerVerifierDispatch(t *testing.T) {
	for _, alg := range []jwa.SignatureAlgorithm{jwa.HS256, jwa.HS384, jwa.HS512} {
		sv, err := HSSignerVerifier(alg, []byte("secret"))
		if err != nil {
			t.Fatal(err)
		}
		if sv.Alg() != alg {
			t.Error(sv.Alg())
		}
	}

	if _, err := HSSignerVerifier(jwa.RS256, []byte("secret")); err == nil {
		t.Error("expected error for non-HMAC algorithm")
	}
}
