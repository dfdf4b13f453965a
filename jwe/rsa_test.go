package jwe

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

func TestRSAWrapRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	cek := bytes.Repeat([]byte{0x44}, 32)

	for _, alg := range []jwa.KeyManagementAlgorithm{
		jwa.RSA1_5, jwa.RSAOAEP, jwa.RSAOAEP256, jwa.RSAOAEP384, jwa.RSAOAEP512,
	} {
		t.Run(string(alg), func(t *testing.T) {
			wrapper, err := RSAWrapper(alg, &key.PublicKey)
			if err != nil {
				t.Fatal(err)
			}
			wrapped, err := wrapper.WrapKey(cek)
			if err != nil {
				t.Fatal(err)
			}

			unwrapper, err := RSAUnwrapper(alg, key)
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
