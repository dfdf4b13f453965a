package jwt

import "github.com/halimath/compactjose/jwk"

// setKeyProvider adapts a jwk.Set to KeyProvider. Kept as a standalone
// adapter rather than a jwk.Set method so jwk never imports jwt: the
// dependency only ever runs jwt -> jwk, never the reverse.
type setKeyProvider struct {
	set jwk.Set
}

func (s setKeyProvider) Keys(kid string) []jwk.Key {
	return s.set.Candidates(kid)
}

// KeyProviderFromSet adapts set into a KeyProvider suitable for
// Policy.Keys.
func KeyProviderFromSet(set jwk.Set) KeyProvider {
	return setKeyProvider{set: set}
}

// staticKeyProvider always returns the same fixed list of keys,
// ignoring kid. Useful for single-key policies in tests and small
// services where kid-based selection is unnecessary.
type staticKeyProvider struct {
	keys []jwk.Key
}

func (s staticKeyProvider) Keys(string) []jwk.Key { return s.keys }

// KeyProviderFromKeys adapts a fixed list of keys into a KeyProvider
// that ignores "kid" and always offers every key as a candidate.
func KeyProviderFromKeys(keys ...jwk.Key) KeyProvider {
	return staticKeyProvider{keys: keys}
}
