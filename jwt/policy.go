package jwt

import (
	"time"

	"github.com/halimath/compactjose/internal/headercache"
	"github.com/halimath/compactjose/internal/jsonidx"
	"github.com/halimath/compactjose/jwk"
)

// KeyProvider resolves the set of keys a reader should try for a token
// carrying the given "kid" (which may be empty). Candidates are tried
// in the order returned; verification/unwrap uses
// trial-and-first-success.
type KeyProvider interface {
	Keys(kid string) []jwk.Key
}

// CriticalHeaderHandler validates the header for one name listed in its
// "crit" member (RFC 7515 section 4.1.11 / RFC 7516 section 4.1.13).
// It runs whenever a header is parsed rather than served from the
// policy's header cache; only headers that pass are cached. Returning an
// error rejects the token with CriticalHeaderRejected.
type CriticalHeaderHandler func(h *Header) error

const (
	// DefaultMaxTokenSize bounds the raw compact-serialization input
	// size a Parse call will consider before decoding anything.
	DefaultMaxTokenSize = 1 << 20 // 1 MiB

	// DefaultMaxDecompressedSize bounds the inflated size of a "zip":
	// "DEF" JWE payload.
	DefaultMaxDecompressedSize = 10 << 20 // 10 MiB

	// DefaultClockSkew is the leeway applied to "exp"/"nbf" comparisons.
	DefaultClockSkew = 60 * time.Second
)

// Policy configures one Parse pipeline invocation. A Policy is built
// once (typically at startup) and reused across many Parse calls: its
// header cache amortizes repeated headers, and a cached header's
// validity depends on the policy's own critical-header configuration,
// so two Policies never share a cache.
type Policy struct {
	MaxTokenSize        int
	MaxDecompressedSize int
	ClockSkew           time.Duration
	Now                 func() time.Time

	Keys KeyProvider

	// Passwords holds the PBES2 candidate passwords. jwk.PasswordKey does
	// not implement jwk.Key (RFC 7518's PBES2 passwords are never
	// serialized as a JWK), so it cannot live in the jwk.Set a KeyProvider
	// wraps; it gets its own dedicated field instead.
	Passwords []*jwk.PasswordKey

	RequiredIssuer   string
	ExpectedAudience string
	RequireExp       bool
	RequireNbf       bool

	allowUnsecured    bool
	ignoreNestedToken bool
	cacheDisabled     bool

	criticalHandlers map[string]CriticalHeaderHandler

	headerCache *headercache.Cache[*cachedHeader]
}

// cachedHeader is what the header cache stores: the decoded header and
// its parsed index. Only headers that passed the policy's
// critical-header handlers are stored, so a repeated header need not
// re-run either step.
type cachedHeader struct {
	buf []byte
	idx *jsonidx.Index
}

// AllowUnsecured reports whether this policy accepts "alg": "none"
// tokens. Off by default: an unsecured token must never be accepted
// silently.
func (p *Policy) AllowUnsecured() bool { return p.allowUnsecured }

// IgnoreNestedToken reports whether a "cty": "JWT" payload should be
// surfaced as raw text instead of being recursively parsed.
func (p *Policy) IgnoreNestedToken() bool { return p.ignoreNestedToken }

// PolicyBuilder builds a Policy fluently, mirroring the functional-
// options idiom of github.com/halimath/jose/jwt's Issuer/Audience/...
// verifier constructors.
type PolicyBuilder struct {
	p *Policy
}

// NewPolicy starts building a Policy with this module's defaults.
func NewPolicy() *PolicyBuilder {
	return &PolicyBuilder{p: &Policy{
		MaxTokenSize:        DefaultMaxTokenSize,
		MaxDecompressedSize: DefaultMaxDecompressedSize,
		ClockSkew:           DefaultClockSkew,
		Now:                 time.Now,
		criticalHandlers:    map[string]CriticalHeaderHandler{},
		headerCache:         headercache.New[*cachedHeader](headercache.DefaultCapacity),
	}}
}

func (b *PolicyBuilder) WithKeyProvider(kp KeyProvider) *PolicyBuilder {
	b.p.Keys = kp
	return b
}

func (b *PolicyBuilder) WithPasswords(passwords ...*jwk.PasswordKey) *PolicyBuilder {
	b.p.Passwords = append(b.p.Passwords, passwords...)
	return b
}

func (b *PolicyBuilder) AllowUnsecured() *PolicyBuilder {
	b.p.allowUnsecured = true
	return b
}

func (b *PolicyBuilder) IgnoreNestedToken() *PolicyBuilder {
	b.p.ignoreNestedToken = true
	return b
}

func (b *PolicyBuilder) WithCriticalHeaderHandler(name string, h CriticalHeaderHandler) *PolicyBuilder {
	b.p.criticalHandlers[name] = h
	return b
}

func (b *PolicyBuilder) WithMaxTokenSize(n int) *PolicyBuilder {
	b.p.MaxTokenSize = n
	return b
}

func (b *PolicyBuilder) WithMaxDecompressedSize(n int) *PolicyBuilder {
	b.p.MaxDecompressedSize = n
	return b
}

func (b *PolicyBuilder) WithClockSkew(d time.Duration) *PolicyBuilder {
	b.p.ClockSkew = d
	return b
}

func (b *PolicyBuilder) WithIssuer(iss string) *PolicyBuilder {
	b.p.RequiredIssuer = iss
	return b
}

func (b *PolicyBuilder) WithAudience(aud string) *PolicyBuilder {
	b.p.ExpectedAudience = aud
	return b
}

// RequireExpiration makes a missing "exp" claim a validation failure.
func (b *PolicyBuilder) RequireExpiration() *PolicyBuilder {
	b.p.RequireExp = true
	return b
}

// RequireNotBefore makes a missing "nbf" claim a validation failure.
func (b *PolicyBuilder) RequireNotBefore() *PolicyBuilder {
	b.p.RequireNbf = true
	return b
}

// WithHeaderCacheCapacity replaces the default header cache with one
// bounded to capacity entries.
func (b *PolicyBuilder) WithHeaderCacheCapacity(capacity int) *PolicyBuilder {
	b.p.headerCache = headercache.New[*cachedHeader](capacity)
	return b
}

// WithoutHeaderCache disables header caching; every Parse re-decodes
// and re-validates the header segment.
func (b *PolicyBuilder) WithoutHeaderCache() *PolicyBuilder {
	b.p.cacheDisabled = true
	return b
}

func (b *PolicyBuilder) Build() *Policy {
	return b.p
}
