package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

func testECKeyPair(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestECDSAPublicKeyMarshalRoundTrip(t *testing.T) {
	priv := testECKeyPair(t)
	k := &ECDSAPublicKey{PublicKey: &priv.PublicKey}

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := parsed.(*ECDSAPublicKey)
	if !ok {
		t.Fatalf("expected *ECDSAPublicKey, got %T", parsed)
	}
	if got.X.Cmp(priv.PublicKey.X) != 0 || got.Y.Cmp(priv.PublicKey.Y) != 0 {
		t.Error("round trip did not reproduce the public key")
	}
}

func TestECDSAPrivateKeyMarshalRoundTripAndSign(t *testing.T) {
	priv := testECKeyPair(t)
	k := &ECDSAPrivateKey{PrivateKey: priv}

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := parsed.(*ECDSAPrivateKey)
	if !ok {
		t.Fatalf("expected *ECDSAPrivateKey, got %T", parsed)
	}

	signer, err := got.CreateSigner(jwa.ES256)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := signer.Sign([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	pub := &ECDSAPublicKey{PublicKey: &priv.PublicKey}
	verifier, err := pub.CreateVerifier(jwa.ES256)
	if err != nil {
		t.Fatal(err)
	}
	if err := verifier.Verify([]byte("payload"), sig); err != nil {
		t.Error(err)
	}
}

func TestECDHESKeyWrapRoundTripViaJWK(t *testing.T) {
	recipientPriv := testECKeyPair(t)
	pub := &ECDSAPublicKey{PublicKey: &recipientPriv.PublicKey}
	priv := &ECDSAPrivateKey{PrivateKey: recipientPriv}

	cek := []byte("0123456789abcdef")

	wrapper, err := pub.CreateKeyWrapper(jwa.ECDHESA128KW, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := wrapper.WrapKey(cek)
	if err != nil {
		t.Fatal(err)
	}

	type headerUpdater interface{ Params() map[string]any }
	params := wrapper.(headerUpdater).Params()
	epkMap := params["epk"].(map[string]any)

	epk := &ECDSAPublicKey{}
	epkJSON := []byte(`{"kty":"` + epkMap["kty"].(string) + `","crv":"` + epkMap["crv"].(string) +
		`","x":"` + epkMap["x"].(string) + `","y":"` + epkMap["y"].(string) + `"}`)
	if err := epk.UnmarshalJSON(epkJSON); err != nil {
		t.Fatal(err)
	}

	unwrapper, err := priv.CreateKeyUnwrapper(jwa.ECDHESA128KW, epk, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	recovered, err := unwrapper.UnwrapKey(wrapped, len(cek))
	if err != nil {
		t.Fatal(err)
	}
	if string(recovered) != string(cek) {
		t.Errorf("got %q, want %q", recovered, cek)
	}
}
