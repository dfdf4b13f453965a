package jwk

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/halimath/compactjose/jwa"
)

func testRSAKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestRSAPublicKeyMarshalRoundTrip(t *testing.T) {
	priv := testRSAKeyPair(t)
	k := &RSAPublicKey{KeyDescription: KeyDescription{KeyID: "rsa-1"}, PublicKey: &priv.PublicKey}

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := parsed.(*RSAPublicKey)
	if !ok {
		t.Fatalf("expected *RSAPublicKey, got %T", parsed)
	}
	if got.N.Cmp(priv.PublicKey.N) != 0 || got.E != priv.PublicKey.E {
		t.Error("round trip did not reproduce the public key")
	}
}

func TestRSAPrivateKeyMarshalRoundTripAndSign(t *testing.T) {
	priv := testRSAKeyPair(t)
	k := &RSAPrivateKey{PrivateKey: priv}

	data, err := MarshalKey(k)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := UnmarshalKey(data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := parsed.(*RSAPrivateKey)
	if !ok {
		t.Fatalf("expected *RSAPrivateKey, got %T", parsed)
	}

	signer, err := got.CreateSigner(jwa.RS256)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := signer.Sign([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	pub := &RSAPublicKey{PublicKey: &priv.PublicKey}
	verifier, err := pub.CreateVerifier(jwa.RS256)
	if err != nil {
		t.Fatal(err)
	}
	if err := verifier.Verify([]byte("payload"), sig); err != nil {
		t.Error(err)
	}
}

func TestRSAThumbprintMatchesBetweenPublicAndPrivate(t *testing.T) {
	priv := testRSAKeyPair(t)
	pub := &RSAPublicKey{PublicKey: &priv.PublicKey}
	private := &RSAPrivateKey{PrivateKey: priv}

	pubThumb, err := pub.Thumbprint()
	if err != nil {
		t.Fatal(err)
	}
	privThumb, err := private.Thumbprint()
	if err != nil {
		t.Fatal(err)
	}
	if pubThumb != privThumb {
		t.Errorf("expected matching thumbprints, got %q and %q", pubThumb, privThumb)
	}
}

func TestRSAKeyWrapRoundTrip(t *testing.T) {
	priv := testRSAKeyPair(t)
	pub := &RSAPublicKey{PublicKey: &priv.PublicKey}
	private := &RSAPrivateKey{PrivateKey: priv}
	cek := []byte("0123456789abcdef0123456789abcdef")

	wrapper, err := pub.CreateKeyWrapper(jwa.RSAOAEP256)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := wrapper.WrapKey(cek)
	if err != nil {
		t.Fatal(err)
	}

	unwrapper, err := private.CreateKeyUnwrapper(jwa.RSAOAEP256)
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
