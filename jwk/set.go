package jwk

import (
	"encoding/json"
)

// KeyFilter filters Keys in a Set.
type KeyFilter func(k Key) bool

// WithID creates a KeyFilter matching a key's "kid".
func WithID(kid string) KeyFilter {
	return func(k Key) bool { return k.ID() == kid }
}

// WithUse creates a KeyFilter matching a key's "use".
func WithUse(use KeyUse) KeyFilter {
	return func(k Key) bool { return k.Use() == use || k.Use() == "" }
}

// WithAlgorithm creates a KeyFilter matching a key's "alg", treating an
// unset "alg" on the key as compatible with any requested algorithm
// (RFC 7517 section 4.4 makes "alg" optional; a key that doesn't
// declare one is not thereby disqualified).
func WithAlgorithm(alg string) KeyFilter {
	return func(k Key) bool { return k.Algorithm() == alg || k.Algorithm() == "" }
}

// Set implements a set of keys, the JWK Set of RFC 7517 section 5.
type Set []Key

// Has checks whether s contains at least one Key matching f.
func (s Set) Has(f KeyFilter) bool {
	for _, k := range s {
		if f(k) {
			return true
		}
	}
	return false
}

// First returns the first key in s matching f, or nil.
func (s Set) First(f KeyFilter) Key {
	for _, k := range s {
		if f(k) {
			return k
		}
	}
	return nil
}

// Candidates returns the keys in s that a reader should try, in trial
// order, for a JWE or JWS carrying the given "kid" (which may be
// empty). When kid is non-empty, keys whose ID matches are tried first,
// followed by keys with no ID at all (a sender need not always set
// "kid"); keys with a different, non-matching ID are never tried,
// mirroring the key-selection discipline described for multi-recipient
// JWEs in RFC 7516 section 5.2 step 1 and implemented by
// gopkg.in/square/go-jose.v2's multi-key decrypt loop. When kid is
// empty, every key in s is a candidate, tried in Set order.
func (s Set) Candidates(kid string) []Key {
	if kid == "" {
		out := make([]Key, len(s))
		copy(out, s)
		return out
	}

	var matched, unlabeled []Key
	for _, k := range s {
		switch k.ID() {
		case kid:
			matched = append(matched, k)
		case "":
			unlabeled = append(unlabeled, k)
		}
	}
	return append(matched, unlabeled...)
}

const ParamKeys = "keys"

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Keys []Key `json:"keys"`
	}{Keys: s})
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var w struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	keys := make(Set, len(w.Keys))
	for i, rm := range w.Keys {
		k, err := UnmarshalKey(rm)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	*s = keys
	return nil
}
