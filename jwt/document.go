package jwt

import (
	"github.com/halimath/compactjose/internal/jsonidx"
	"github.com/halimath/compactjose/internal/pool"
	"github.com/halimath/compactjose/jwterr"
)

// Document is the result of a successful Parse. It owns the pooled
// buffer holding the decrypted/decompressed plaintext (if any was
// rented for this parse) and the parsed payload index; the header
// buffer is owned here too unless it was served from the policy's
// header cache, in which case it outlives any single Document and must
// not be released by one.
//
// A Document is not thread-safe after construction and must not be used
// concurrently with Dispose.
type Document struct {
	headerBuf   []byte
	headerIdx   *jsonidx.Index
	headerOwned *pool.Buffer // non-nil if this Document must release the header buffer itself

	payloadBuf *pool.Buffer
	payloadIdx *jsonidx.Index

	nested    *Document // set when cty=JWT and the policy recursed into the plaintext
	nestedRaw string    // set instead of nested when policy.IgnoreNestedToken is true

	disposed bool
}

// valid reports whether d can still be used; false after Dispose.
func (d *Document) valid() bool {
	return d != nil && !d.disposed
}

// Header returns a view over the token's parsed header. Valid only
// while d is not disposed.
func (d *Document) Header() *Header {
	return &Header{doc: d}
}

// Payload returns a view over the token's parsed claims. For a nested
// token ("cty": "JWT", recursively parsed), the view is the inner
// token's claims. Valid only while d is not disposed.
func (d *Document) Payload() *Payload {
	if d.valid() && d.nested != nil {
		return d.nested.Payload()
	}
	return &Payload{doc: d}
}

// Nested returns the recursively-parsed inner Document when the
// header's "cty" was "JWT" and the policy did not set
// IgnoreNestedToken, and ok=true. Ownership of the nested Document
// belongs to the outer one: disposing the outer Document disposes the
// nested one too.
func (d *Document) Nested() (*Document, bool) {
	if !d.valid() || d.nested == nil {
		return nil, false
	}
	return d.nested, true
}

// NestedRaw returns the raw inner compact token text when the header's
// "cty" was "JWT" and the policy set IgnoreNestedToken, and ok=true.
func (d *Document) NestedRaw() (string, bool) {
	if !d.valid() || d.nestedRaw == "" {
		return "", false
	}
	return d.nestedRaw, true
}

// Dispose releases the Document's pooled buffers back to the process
// pool and invalidates every Element handle obtained from it. Calling
// Dispose twice is a no-op.
func (d *Document) Dispose() {
	if d == nil || d.disposed {
		return
	}
	d.disposed = true
	if d.nested != nil {
		d.nested.Dispose()
	}
	if d.headerOwned != nil {
		d.headerOwned.Release()
	}
	if d.payloadBuf != nil {
		d.payloadBuf.Release()
	}
}

// area identifies which of a Document's two JSON indexes an Element
// refers to.
type area uint8

const (
	areaHeader area = iota
	areaPayload
)

// Element is a lightweight handle {document, index} referring to one
// node of a Document's header or payload JSON. It is meaningless once
// the owning Document is disposed; every accessor checks validity
// first.
type Element struct {
	doc  *Document
	area area
	el   jsonidx.Element
	ok   bool
}

func (e Element) index() *jsonidx.Index {
	if e.area == areaHeader {
		return e.doc.headerIdx
	}
	return e.doc.payloadIdx
}

// Valid reports whether e refers to a present member and its owning
// Document has not been disposed.
func (e Element) Valid() bool {
	return e.ok && e.doc.valid()
}

func (e Element) checkValid() error {
	if !e.ok {
		return jwterr.New(jwterr.InvalidHeader)
	}
	if !e.doc.valid() {
		return jwterr.New(jwterr.InstanceInvalidated)
	}
	return nil
}

// Kind returns the JSON kind of e.
func (e Element) Kind() jsonidx.Kind {
	if !e.Valid() {
		return jsonidx.KindInvalid
	}
	return e.index().Kind(e.el)
}

// String unescapes and returns e's string value.
func (e Element) String() (string, error) {
	if err := e.checkValid(); err != nil {
		return "", err
	}
	return e.index().String(e.el)
}

// Int64 returns e's numeric value truncated to an integer, for
// NumericDate-shaped claims.
func (e Element) Int64() (int64, error) {
	if err := e.checkValid(); err != nil {
		return 0, err
	}
	return e.index().Int64(e.el)
}

// Bool returns e's boolean value.
func (e Element) Bool() (bool, error) {
	if err := e.checkValid(); err != nil {
		return false, err
	}
	return e.index().Bool(e.el)
}

// Raw returns e's exact source JSON bytes (including string quotes or
// object/array braces).
func (e Element) Raw() ([]byte, error) {
	if err := e.checkValid(); err != nil {
		return nil, err
	}
	return e.index().Raw(e.el), nil
}

// StringSlice returns e's value as a slice of strings: a bare string is
// returned as a single-element slice (the "aud" claim's permitted
// shorthand, RFC 7519 section 4.1.3), an array of strings is returned
// as-is.
func (e Element) StringSlice() ([]string, error) {
	if err := e.checkValid(); err != nil {
		return nil, err
	}
	idx := e.index()
	switch idx.Kind(e.el) {
	case jsonidx.KindString:
		s, err := idx.String(e.el)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	case jsonidx.KindArray:
		children := idx.Children(e.el)
		out := make([]string, 0, len(children))
		for _, c := range children {
			s, err := idx.String(c)
			if err != nil {
				return nil, jwterr.WithParam(jwterr.InvalidHeader, "not a string array")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "not a string or string array")
	}
}
