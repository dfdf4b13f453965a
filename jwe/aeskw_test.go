package jwe

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

// TestAESKWVector checks against RFC 3394 section 4.1's 128 bit KEK /
// 128 bit key data test vector.
func TestAESKWVector(t *testing.T) {
	kek, _ := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	keyData, _ := hex.DecodeString("00112233445566778899AABBCCDDEEFF")
	want, _ := hex.DecodeString("1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5")

	kw, err := AESKWWrapper(jwa.A128KW, kek)
	if err != nil {
		t.Fatal(err)
	}
	got, err := kw.WrapKey(keyData)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}

	kuw, err := AESKWUnwrapper(jwa.A128KW, kek)
	if err != nil {
		t.Fatal(err)
	}
	recovered, err := kuw.UnwrapKey(got, len(keyData))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(recovered, keyData) {
		t.Errorf("got %x, want %x", recovered, keyData)
	}
}

func TestAESKWRoundTrip(t *testing.T) {
	for name, alg := range map[string]jwa.KeyManagementAlgorithm{
		"A128KW": jwa.A128KW,
		"A192KW": jwa.A192KW,
		"A256KW": jwa.A256KW,
	} {
		t.Run(name, func(t *testing.T) {
			info, _ := jwa.LookupKeyManagement(alg)
			kek := bytes.Repeat([]byte{0x42}, info.KeyBits/8)
			cek := bytes.Repeat([]byte{0x24}, 32)

			wrapper, err := AESKWWrapper(alg, kek)
			if err != nil {
				t.Fatal(err)
			}
			wrapped, err := wrapper.WrapKey(cek)
			if err != nil {
				t.Fatal(err)
			}

			unwrapper, err := AESKWUnwrapper(alg, kek)
			if err != nil {
				t.Fatal(err)
			}
			recovered, err := unwrapper.UnwrapKey(wrapped, len(cek))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(recovered, cek) {
				t.Errorf("got %x, want %x", recovered, cek)
			}
		})
	}
}

func TestAESKWUnwrapRejectsTampered(t *testing.T) {
	kek := bytes.Repeat([]byte{0x01}, 16)
	cek := bytes.Repeat([]byte{0x02}, 16)

	wrapper, _ := AESKWWrapper(jwa.A128KW, kek)
	wrapped, err := wrapper.WrapKey(cek)
	if err != nil {
		t.Fatal(err)
	}
	wrapped[0] ^= 0xff

	unwrapper, _ := AESKWUnwrapper(jwa.A128KW, kek)
	if _, err := unwrapper.UnwrapKey(wrapped, len(cek)); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}
