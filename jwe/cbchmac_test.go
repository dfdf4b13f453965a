package jwe

import (
	"bytes"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

func TestCBCHMACRoundTrip(t *testing.T) {
	for name, alg := range map[string]jwa.EncryptionAlgorithm{
		"A128CBC-HS256": jwa.A128CBCHS256,
		"A192CBC-HS384": jwa.A192CBCHS384,
		"A256CBC-HS512": jwa.A256CBCHS512,
	} {
		t.Run(name, func(t *testing.T) {
			enc, dec, err := CBCHMAC(alg)
			if err != nil {
				t.Fatal(err)
			}

			cek := bytes.Repeat([]byte{0x07}, enc.KeySize())
			plaintext := []byte("the quick brown fox jumps over the lazy dog")
			aad := []byte("protected-header")

			iv, ciphertext, tag, err := enc.Seal(cek, plaintext, aad)
			if err != nil {
				t.Fatal(err)
			}

			got, err := dec.Open(cek, iv, ciphertext, tag, aad)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("got %q, want %q", got, plaintext)
			}
		})
	}
}

func TestCBCHMACRejectsTamperedTag(t *testing.T) {
	enc, dec, err := CBCHMAC(jwa.A128CBCHS256)
	if err != nil {
		t.Fatal(err)
	}

	cek := bytes.Repeat([]byte{0x07}, enc.KeySize())
	iv, ciphertext, tag, err := enc.Seal(cek, []byte("hello"), []byte("aad"))
	if err != nil {
		t.Fatal(err)
	}
	tag[0] ^= 0xff

	if _, err := dec.Open(cek, iv, ciphertext, tag, []byte("aad")); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestCBCHMACRejectsWrongAAD(t *testing.T) {
	enc, dec, err := CBCHMAC(jwa.A128CBCHS256)
	if err != nil {
		t.Fatal(err)
	}

	cek := bytes.Repeat([]byte{0x07}, enc.KeySize())
	iv, ciphertext, tag, err := enc.Seal(cek, []byte("hello"), []byte("aad"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := dec.Open(cek, iv, ciphertext, tag, []byte("different-aad")); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}
