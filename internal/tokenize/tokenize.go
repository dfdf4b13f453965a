// Package tokenize splits a compact-serialized JOSE token into segment
// descriptors without allocating. A JWS has 3 segments
// (header.payload.signature); a JWE has 5
// (header.encrypted_key.iv.ciphertext.tag).
package tokenize

import "github.com/halimath/compactjose/jwterr"

// MaxSegments bounds the number of '.'-separated segments this module
// will ever recognize. More than 5 is always malformed.
const MaxSegments = 5

// Segment is a zero-copy descriptor into the caller's buffer.
type Segment struct {
	Start  int
	Length int
}

// Slice returns the segment's bytes within buf.
func (s Segment) Slice(buf []byte) []byte {
	return buf[s.Start : s.Start+s.Length]
}

// Split scans buf for '.' separators and returns its segment descriptors.
// It returns exactly 3 segments for a JWS-shaped input or 5 for a
// JWE-shaped input; any other count is MalformedToken. Segments must be
// non-empty, except the JWS signature segment (3rd of 3), which is
// legitimately empty for alg=none, and the JWE encrypted_key and iv
// segments (2nd and 3rd of 5).
func Split(buf []byte) ([]Segment, error) {
	var segs [MaxSegments]Segment
	count := 0
	start := 0

	for i, b := range buf {
		if b != '.' {
			continue
		}
		if count >= MaxSegments {
			return nil, jwterr.New(jwterr.MalformedToken)
		}
		segs[count] = Segment{Start: start, Length: i - start}
		count++
		start = i + 1
	}
	if count >= MaxSegments {
		return nil, jwterr.New(jwterr.MalformedToken)
	}
	segs[count] = Segment{Start: start, Length: len(buf) - start}
	count++

	switch count {
	case 3:
		if segs[0].Length == 0 || segs[1].Length == 0 {
			return nil, jwterr.New(jwterr.MalformedToken)
		}
		// segs[2] (signature) may be empty: alg=none.
	case 5:
		for i, s := range segs[:5] {
			if s.Length == 0 && i != 1 && i != 2 {
				// encrypted_key (index 1) is empty for direct key
				// agreement (dir, ECDH-ES); iv (index 2) may be empty for
				// some content encryption algorithms' corner cases. The
				// header, ciphertext and tag are always required.
				return nil, jwterr.New(jwterr.MalformedToken)
			}
		}
	default:
		return nil, jwterr.New(jwterr.MalformedToken)
	}

	return segs[:count], nil
}
