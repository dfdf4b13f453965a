// Package base64url implements the URL-safe, unpadded base64 encoding
// used throughout compact JOSE serialization, as specified in RFC 7515
// section 2 (https://datatracker.ietf.org/doc/html/rfc7515#section-2).
//
// The span-based functions write into caller-supplied buffers, so the
// tokenizer and document reader never allocate an intermediate string
// per segment.
package base64url

import "encoding/base64"

var codec = base64.URLEncoding.WithPadding(base64.NoPadding)

// EncodedLen returns the length of the base64url encoding of an input of
// n bytes.
func EncodedLen(n int) int {
	return codec.EncodedLen(n)
}

// DecodedLen returns an upper bound on the decoded length of an encoded
// input of n bytes. The actual decoded length may be up to 2 bytes
// smaller; callers must use the length returned by Decode.
func DecodedLen(n int) int {
	return codec.DecodedLen(n)
}

// Encode encodes src into dst, which must have length >= EncodedLen(len(src)),
// and returns the number of bytes written.
func Encode(dst, src []byte) int {
	codec.Encode(dst, src)
	return codec.EncodedLen(len(src))
}

// EncodeToString encodes src and returns the result as a newly allocated
// string. It is a convenience wrapper for call sites that do not own a
// pooled buffer (header construction during writing, tests).
func EncodeToString(src []byte) string {
	return codec.EncodeToString(src)
}

// Decode decodes src into dst, which must have length >= DecodedLen(len(src)),
// and returns the number of bytes written or a MalformedToken-class error
// if src contains a byte outside the base64url alphabet or has length
// congruent to 1 mod 4.
func Decode(dst, src []byte) (int, error) {
	if len(src)%4 == 1 {
		return 0, errBadLength
	}
	n, err := codec.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DecodeString decodes the base64url string s and returns the decoded
// bytes as a newly allocated slice. It is a convenience wrapper around
// Decode for call sites that do not manage their own buffers.
func DecodeString(s string) ([]byte, error) {
	if len(s)%4 == 1 {
		return nil, errBadLength
	}
	return codec.DecodeString(s)
}

var errBadLength = badLengthError{}

type badLengthError struct{}

func (badLengthError) Error() string { return "base64url: invalid length" }
