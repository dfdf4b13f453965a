package jwt

import (
	"time"

	"github.com/halimath/compactjose/internal/jsonidx"
)

// Payload is a view over a Document's claims JSON. Like Header, it is
// a thin lookup layer with no caching; valid only while its Document is
// not disposed.
type Payload struct {
	doc *Document
}

func (p *Payload) member(name string) Element {
	if !p.doc.valid() || p.doc.payloadIdx == nil {
		return Element{doc: p.doc, area: areaPayload}
	}
	e, ok := p.doc.payloadIdx.Member(jsonidx.Element(p.doc.payloadIdx.Root), name)
	return Element{doc: p.doc, area: areaPayload, el: e, ok: ok}
}

// Get returns the named claim, whatever its JSON kind.
func (p *Payload) Get(name string) Element {
	return p.member(name)
}

// Has reports whether the payload carries the named claim.
func (p *Payload) Has(name string) bool {
	return p.member(name).Valid()
}

func (p *Payload) stringOrEmpty(name string) string {
	e := p.member(name)
	if !e.Valid() {
		return ""
	}
	s, err := e.String()
	if err != nil {
		return ""
	}
	return s
}

// Issuer returns the "iss" claim, or "" if absent.
func (p *Payload) Issuer() string { return p.stringOrEmpty("iss") }

// Subject returns the "sub" claim, or "" if absent.
func (p *Payload) Subject() string { return p.stringOrEmpty("sub") }

// JWTID returns the "jti" claim, or "" if absent.
func (p *Payload) JWTID() string { return p.stringOrEmpty("jti") }

// Audience returns the "aud" claim, accepting both the single-string
// and string-array forms permitted by RFC 7519 section 4.1.3. Returns
// nil if absent.
func (p *Payload) Audience() ([]string, error) {
	e := p.member("aud")
	if !e.Valid() {
		return nil, nil
	}
	return e.StringSlice()
}

func (p *Payload) numericDate(name string) (time.Time, bool, error) {
	e := p.member(name)
	if !e.Valid() {
		return time.Time{}, false, nil
	}
	secs, err := e.Int64()
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(secs, 0).UTC(), true, nil
}

// ExpirationTime returns the "exp" claim as a time, and ok=false if
// absent.
func (p *Payload) ExpirationTime() (time.Time, bool, error) { return p.numericDate("exp") }

// NotBefore returns the "nbf" claim as a time, and ok=false if absent.
func (p *Payload) NotBefore() (time.Time, bool, error) { return p.numericDate("nbf") }

// IssuedAt returns the "iat" claim as a time, and ok=false if absent.
func (p *Payload) IssuedAt() (time.Time, bool, error) { return p.numericDate("iat") }

// Raw returns the exact JSON bytes of the payload, as encoded or
// decrypted (after decompression, if any). Nil once the Document has
// been disposed.
func (p *Payload) Raw() []byte {
	if !p.doc.valid() || p.doc.payloadIdx == nil {
		return nil
	}
	return p.doc.payloadIdx.Buf
}
