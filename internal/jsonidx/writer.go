package jsonidx

import "encoding/json"

// Member is one JSON object member to be written by WriteHeader: a key
// plus any value json.Marshal can handle (string, []string, float64,
// bool, map[string]any, ...).
type Member struct {
	Key   string
	Value any
}

// canonicalHeaderOrder is the fixed member order used for reproducible
// header writes: alg, enc, zip, cty, typ, kid, then extensions in
// insertion order.
var canonicalHeaderOrder = []string{"alg", "enc", "zip", "cty", "typ", "kid"}

// WriteHeader appends the canonical JSON object encoding of members to
// dst and returns the result. Members named in canonicalHeaderOrder are
// emitted first, in that fixed order, regardless of their position in
// members; any remaining members are emitted afterwards in the order
// they appear in members. The output contains no superfluous whitespace.
func WriteHeader(dst []byte, members []Member) ([]byte, error) {
	byKey := make(map[string]any, len(members))
	present := make(map[string]bool, len(members))
	var extraOrder []string
	for _, m := range members {
		byKey[m.Key] = m.Value
		present[m.Key] = true
	}
	known := make(map[string]bool, len(canonicalHeaderOrder))
	for _, k := range canonicalHeaderOrder {
		known[k] = true
	}
	queued := make(map[string]bool)
	for _, m := range members {
		if !known[m.Key] && !queued[m.Key] {
			extraOrder = append(extraOrder, m.Key)
			queued[m.Key] = true
		}
	}

	dst = append(dst, '{')
	first := true
	emit := func(key string) error {
		if !present[key] {
			return nil
		}
		if !first {
			dst = append(dst, ',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		dst = append(dst, kb...)
		dst = append(dst, ':')
		vb, err := json.Marshal(byKey[key])
		if err != nil {
			return err
		}
		dst = append(dst, vb...)
		return nil
	}

	for _, k := range canonicalHeaderOrder {
		if err := emit(k); err != nil {
			return nil, err
		}
	}
	for _, k := range extraOrder {
		if err := emit(k); err != nil {
			return nil, err
		}
	}
	dst = append(dst, '}')
	return dst, nil
}

// WriteCompact marshals v (typically a claims map or struct) as compact
// JSON with no superfluous whitespace, matching what WriteHeader produces
// for the header segment. encoding/json.Marshal already omits whitespace
// between tokens, so this is a thin, documented wrapper rather than a
// second hand-rolled serializer.
func WriteCompact(v any) ([]byte, error) {
	return json.Marshal(v)
}
