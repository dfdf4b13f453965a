package jwe

import (
	"bytes"
	"testing"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwa"
)

func TestAESGCMKWRoundTrip(t *testing.T) {
	for name, alg := range map[string]jwa.KeyManagementAlgorithm{
		"A128GCMKW": jwa.A128GCMKW,
		"A192GCMKW": jwa.A192GCMKW,
		"A256GCMKW": jwa.A256GCMKW,
	} {
		t.Run(name, func(t *testing.T) {
			info, _ := jwa.LookupKeyManagement(alg)
			kek := bytes.Repeat([]byte{0x22}, info.KeyBits/8)
			cek := bytes.Repeat([]byte{0x33}, 32)

			wrapper, err := AESGCMKWWrapper(alg, kek)
			if err != nil {
				t.Fatal(err)
			}
			wrapped, err := wrapper.WrapKey(cek)
			if err != nil {
				t.Fatal(err)
			}

			params := wrapper.(HeaderUpdater).Params()
			iv := params["iv"].(string)
			tag := params["tag"].(string)

			ivBytes, err := base64url.DecodeString(iv)
			if err != nil {
				t.Fatal(err)
			}
			tagBytes, err := base64url.DecodeString(tag)
			if err != nil {
				t.Fatal(err)
			}

			unwrapper, err := AESGCMKWUnwrapper(alg, kek, ivBytes, tagBytes)
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
