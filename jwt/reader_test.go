package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/halimath/compactjose/internal/base64url"
	"github.com/halimath/compactjose/jwk"
	"github.com/halimath/compactjose/jws"
	"github.com/halimath/compactjose/jwterr"
)

func symmetricTestKey(size int) *jwk.SymmetricKey {
	return &jwk.SymmetricKey{Bytes: make([]byte, size)}
}

func policyWithKeys(keys ...jwk.Key) *Policy {
	return NewPolicy().WithKeyProvider(KeyProviderFromKeys(keys...)).Build()
}

// hs256Token assembles a compact JWS from literal header and claims
// JSON, signing with HMAC-SHA256 under secret. Used to exercise the
// reader against headers the writer would never emit (duplicate
// members, unknown algorithms, crit variations).
func hs256Token(t *testing.T, headerJSON, claimsJSON string, secret []byte) []byte {
	t.Helper()

	signingInput := base64url.EncodeToString([]byte(headerJSON)) + "." + base64url.EncodeToString([]byte(claimsJSON))
	sig, err := jws.HS256(secret).Sign([]byte(signingInput))
	if err != nil {
		t.Fatal(err)
	}
	return []byte(signingInput + "." + base64url.EncodeToString(sig))
}

func expectKind(t *testing.T, err error, want jwterr.Kind) {
	t.Helper()

	kind, ok := jwterr.KindOf(err)
	if !ok {
		t.Fatalf("expected error of kind %s, got %v", want, err)
	}
	if kind != want {
		t.Fatalf("expected error kind %s, got %s (%v)", want, kind, err)
	}
}

func TestParseRejectsOversizedInput(t *testing.T) {
	policy := NewPolicy().WithMaxTokenSize(16).Build()

	_, err := Parse([]byte(strings.Repeat("a", 17)), policy)
	expectKind(t, err, jwterr.SizeLimitExceeded)
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	key := symmetricTestKey(32)
	policy := policyWithKeys(key)

	for name, token := range map[string]string{
		"no dots":       "eyJhbGciOiJIUzI1NiJ9",
		"two segments":  "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0",
		"four segments": "a.b.c.d",
		"six segments":  "a.b.c.d.e.f",
		"empty header":  ".eyJzdWIiOiJ4In0.c2ln",
		"empty payload": "eyJhbGciOiJIUzI1NiJ9..c2ln",
		"bad base64":    "e?J.eyJzdWIiOiJ4In0.c2ln",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(token), policy)
			expectKind(t, err, jwterr.MalformedToken)
		})
	}
}

func TestParseRejectsUnknownAlgorithm(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS257"}`, `{"sub":"alice"}`, key.Bytes)

	_, err := Parse(token, policyWithKeys(key))
	expectKind(t, err, jwterr.InvalidHeader)
}

func TestParseRejectsMissingKey(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	_, err := Parse(token, NewPolicy().Build())
	expectKind(t, err, jwterr.SignatureKeyNotFound)
}

func TestParseRejectsWrongKey(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	other := &jwk.SymmetricKey{Bytes: []byte(strings.Repeat("x", 32))}
	_, err := Parse(token, policyWithKeys(other))
	expectKind(t, err, jwterr.SignatureValidationFailed)
}

func TestParseDuplicateHeaderMemberLastWins(t *testing.T) {
	key := symmetricTestKey(32)

	// "alg" appears twice; the reader must honor the last value and
	// verify as HS256 rather than treat the token as unsecured.
	token := hs256Token(t, `{"alg":"none","alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	doc, err := Parse(token, policyWithKeys(key))
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Dispose()

	if got := doc.Header().Alg(); got != "HS256" {
		t.Errorf("expected HS256, got %q", got)
	}
}

func TestParseHeaderCacheMatchesFreshParse(t *testing.T) {
	key := symmetricTestKey(32)
	policy := policyWithKeys(key)
	token := hs256Token(t, `{"alg":"HS256","kid":"k1"}`, `{"sub":"alice"}`, key.Bytes)

	first, err := Parse(token, policy)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Dispose()

	second, err := Parse(token, policy)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Dispose()

	if first.Header().Kid() != second.Header().Kid() || first.Header().Alg() != second.Header().Alg() {
		t.Error("cached header parse differs from fresh parse")
	}
}

func TestParseUnsecured(t *testing.T) {
	token := []byte(base64url.EncodeToString([]byte(`{"alg":"none"}`)) + "." + base64url.EncodeToString([]byte(`{"sub":"alice"}`)) + ".")

	t.Run("rejected by default", func(t *testing.T) {
		_, err := Parse(token, NewPolicy().Build())
		expectKind(t, err, jwterr.InvalidHeader)
	})

	t.Run("accepted with opt-in", func(t *testing.T) {
		doc, err := Parse(token, NewPolicy().AllowUnsecured().Build())
		if err != nil {
			t.Fatal(err)
		}
		defer doc.Dispose()

		if got := doc.Payload().Subject(); got != "alice" {
			t.Errorf("expected alice, got %q", got)
		}
	})

	t.Run("non-empty signature rejected", func(t *testing.T) {
		withSig := append(append([]byte{}, token...), []byte("c2ln")...)
		_, err := Parse(withSig, NewPolicy().AllowUnsecured().Build())
		expectKind(t, err, jwterr.MalformedToken)
	})
}

func TestParseExpired(t *testing.T) {
	key := symmetricTestKey(32)
	now := time.Unix(1700000000, 0)

	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice","exp":1699999939}`, key.Bytes)

	t.Run("outside skew", func(t *testing.T) {
		policy := policyWithKeys(key)
		policy.ClockSkew = 60 * time.Second
		policy.Now = func() time.Time { return now }

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.Expired)
	})

	t.Run("inside skew", func(t *testing.T) {
		policy := policyWithKeys(key)
		policy.ClockSkew = 61 * time.Second
		policy.Now = func() time.Time { return now }

		doc, err := Parse(token, policy)
		if err != nil {
			t.Fatal(err)
		}
		doc.Dispose()
	})
}

func TestParseNotYetValid(t *testing.T) {
	key := symmetricTestKey(32)
	now := time.Unix(1700000000, 0)

	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice","nbf":1700000100}`, key.Bytes)

	policy := policyWithKeys(key)
	policy.ClockSkew = 60 * time.Second
	policy.Now = func() time.Time { return now }

	_, err := Parse(token, policy)
	expectKind(t, err, jwterr.NotYetValid)
}

func TestParseIssuerAndAudience(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"iss":"idp","aud":["app","other"]}`, key.Bytes)

	t.Run("match", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithIssuer("idp").
			WithAudience("app").
			Build()

		doc, err := Parse(token, policy)
		if err != nil {
			t.Fatal(err)
		}
		doc.Dispose()
	})

	t.Run("wrong issuer", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithIssuer("someone-else").
			Build()

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.InvalidClaim)
	})

	t.Run("wrong audience", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithAudience("stranger").
			Build()

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.InvalidClaim)
	})
}

func TestParseCriticalHeader(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256","crit":["urn:example:acme"],"urn:example:acme":"ok"}`, `{"sub":"alice"}`, key.Bytes)

	t.Run("no handler", func(t *testing.T) {
		_, err := Parse(token, policyWithKeys(key))
		expectKind(t, err, jwterr.CriticalHeaderMissingHandler)
	})

	t.Run("handler accepts", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithCriticalHeaderHandler("urn:example:acme", func(h *Header) error {
				v, err := h.Get("urn:example:acme").String()
				if err != nil {
					return err
				}
				if v != "ok" {
					return jwterr.WithParam(jwterr.CriticalHeaderRejected, "urn:example:acme")
				}
				return nil
			}).
			Build()

		doc, err := Parse(token, policy)
		if err != nil {
			t.Fatal(err)
		}
		doc.Dispose()
	})

	t.Run("handler rejects", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithCriticalHeaderHandler("urn:example:acme", func(h *Header) error {
				return jwterr.New(jwterr.InvalidHeader)
			}).
			Build()

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.CriticalHeaderRejected)
	})

	t.Run("listed member missing", func(t *testing.T) {
		missing := hs256Token(t, `{"alg":"HS256","crit":["urn:example:acme"]}`, `{"sub":"alice"}`, key.Bytes)

		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			WithCriticalHeaderHandler("urn:example:acme", func(h *Header) error { return nil }).
			Build()

		_, err := Parse(missing, policy)
		expectKind(t, err, jwterr.InvalidHeader)
	})
}

func TestDocumentDisposeIdempotent(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	doc, err := Parse(token, policyWithKeys(key))
	if err != nil {
		t.Fatal(err)
	}

	doc.Dispose()
	doc.Dispose()
}

func TestElementInvalidatedAfterDispose(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	doc, err := Parse(token, policyWithKeys(key))
	if err != nil {
		t.Fatal(err)
	}

	el := doc.Payload().Get("sub")
	if !el.Valid() {
		t.Fatal("expected sub claim")
	}

	doc.Dispose()

	if el.Valid() {
		t.Error("element still valid after dispose")
	}
	_, err = el.String()
	expectKind(t, err, jwterr.InstanceInvalidated)
}

func TestParseKidPreferredKeyOrdering(t *testing.T) {
	right := &jwk.SymmetricKey{Bytes: make([]byte, 32)}
	right.KeyID = "k2"
	wrong := &jwk.SymmetricKey{Bytes: []byte(strings.Repeat("w", 32))}
	wrong.KeyID = "k1"

	token := hs256Token(t, `{"alg":"HS256","kid":"k2"}`, `{"sub":"alice"}`, right.Bytes)

	policy := NewPolicy().
		WithKeyProvider(KeyProviderFromSet(jwk.Set{wrong, right})).
		Build()

	doc, err := Parse(token, policy)
	if err != nil {
		t.Fatal(err)
	}
	doc.Dispose()
}

func TestParseTrialVerifyFallsThroughBadKeys(t *testing.T) {
	right := symmetricTestKey(32)
	wrong := &jwk.SymmetricKey{Bytes: []byte(strings.Repeat("w", 32))}

	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, right.Bytes)

	doc, err := Parse(token, policyWithKeys(wrong, right))
	if err != nil {
		t.Fatal(err)
	}
	doc.Dispose()
}

func TestParseRequiredLifetimeClaims(t *testing.T) {
	key := symmetricTestKey(32)
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	t.Run("exp required", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			RequireExpiration().
			Build()

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.InvalidClaim)
	})

	t.Run("nbf required", func(t *testing.T) {
		policy := NewPolicy().
			WithKeyProvider(KeyProviderFromKeys(key)).
			RequireNotBefore().
			Build()

		_, err := Parse(token, policy)
		expectKind(t, err, jwterr.InvalidClaim)
	})

	t.Run("neither required", func(t *testing.T) {
		doc, err := Parse(token, policyWithKeys(key))
		if err != nil {
			t.Fatal(err)
		}
		doc.Dispose()
	})
}

func TestParseWithoutHeaderCache(t *testing.T) {
	key := symmetricTestKey(32)
	policy := NewPolicy().
		WithKeyProvider(KeyProviderFromKeys(key)).
		WithoutHeaderCache().
		Build()
	token := hs256Token(t, `{"alg":"HS256"}`, `{"sub":"alice"}`, key.Bytes)

	for i := 0; i < 2; i++ {
		doc, err := Parse(token, policy)
		if err != nil {
			t.Fatal(err)
		}
		if got := doc.Payload().Subject(); got != "alice" {
			t.Errorf("sub = %q", got)
		}
		doc.Dispose()
	}
}

func TestParseRejectsMissingEnc(t *testing.T) {
	// A 5-segment token whose header lacks "enc".
	header := base64url.EncodeToString([]byte(`{"alg":"dir"}`))
	token := []byte(header + "..aXY.Y3Q.dGFn")

	_, err := Parse(token, policyWithKeys(symmetricTestKey(32)))
	expectKind(t, err, jwterr.MissingEncryptionAlgorithm)
}
