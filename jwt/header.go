package jwt

import (
	"github.com/halimath/compactjose/internal/jsonidx"
	"github.com/halimath/compactjose/jwterr"
)

// Header is a view over a Document's header JSON. Every accessor is a
// Member lookup against the owning Document's index; nothing is copied
// or cached here, so a Header is only valid as long as its Document is
// not disposed.
type Header struct {
	doc *Document
}

func (h *Header) member(name string) Element {
	if !h.doc.valid() || h.doc.headerIdx == nil {
		return Element{doc: h.doc, area: areaHeader}
	}
	e, ok := h.doc.headerIdx.Member(jsonidx.Element(h.doc.headerIdx.Root), name)
	return Element{doc: h.doc, area: areaHeader, el: e, ok: ok}
}

// Get returns the named header member, whatever its JSON kind.
func (h *Header) Get(name string) Element {
	return h.member(name)
}

// Has reports whether the header carries the named member.
func (h *Header) Has(name string) bool {
	return h.member(name).Valid()
}

func (h *Header) stringOrEmpty(name string) string {
	e := h.member(name)
	if !e.Valid() {
		return ""
	}
	s, err := e.String()
	if err != nil {
		return ""
	}
	return s
}

// Alg returns the header's "alg" member, or "" if absent.
func (h *Header) Alg() string { return h.stringOrEmpty("alg") }

// Enc returns the header's "enc" member (JWE only), or "" if absent.
func (h *Header) Enc() string { return h.stringOrEmpty("enc") }

// Zip returns the header's "zip" member, or "" if absent.
func (h *Header) Zip() string { return h.stringOrEmpty("zip") }

// Kid returns the header's "kid" member, or "" if absent.
func (h *Header) Kid() string { return h.stringOrEmpty("kid") }

// Cty returns the header's "cty" member, or "" if absent.
func (h *Header) Cty() string { return h.stringOrEmpty("cty") }

// Typ returns the header's "typ" member, or "" if absent.
func (h *Header) Typ() string { return h.stringOrEmpty("typ") }

// Crit returns the names listed in the header's "crit" member, or nil
// if absent.
func (h *Header) Crit() ([]string, error) {
	e := h.member("crit")
	if !e.Valid() {
		return nil, nil
	}
	if e.Kind() != jsonidx.KindArray {
		return nil, jwterr.WithParam(jwterr.InvalidHeader, "crit")
	}
	return e.StringSlice()
}
