// Package jwterr defines the closed set of error kinds produced by the
// reader and writer pipelines, as specified in RFC 7515/7516 processing
// rules. The jwt reader pipeline reports failures as an *Error carrying
// one of these kinds (optionally wrapping a lower-level cause), so
// callers can recover the kind with KindOf or errors.Is/errors.As. The
// jws, jwe and jwk packages return their own plain errors, and some jwt
// writer errors are plain errors as well.
package jwterr

import "errors"

// Kind identifies one of the closed set of error categories a parse or
// write operation can fail with.
type Kind int

const (
	_ Kind = iota

	// MalformedToken indicates the compact token does not tokenize into
	// the expected 3 or 5 dot-separated, valid base64url segments.
	MalformedToken

	// InvalidHeader indicates the header JSON is malformed or violates an
	// invariant (e.g. a crit name missing from the member set).
	InvalidHeader

	// MissingEncryptionAlgorithm indicates a JWE header lacking "enc".
	MissingEncryptionAlgorithm

	// SignatureKeyNotFound indicates no candidate signing key could be
	// resolved for the header.
	SignatureKeyNotFound

	// EncryptionKeyNotFound indicates no candidate decryption key could be
	// resolved for the header.
	EncryptionKeyNotFound

	// SignatureValidationFailed indicates every candidate key failed to
	// verify the JWS signature.
	SignatureValidationFailed

	// DecryptionFailed indicates key unwrap or authenticated decryption
	// failed for every candidate key, or AAD/tag verification failed.
	DecryptionFailed

	// DecompressionFailed indicates DEFLATE inflation failed or exceeded
	// the configured maximum decompressed size.
	DecompressionFailed

	// Expired indicates the "exp" claim is in the past (beyond skew).
	Expired

	// NotYetValid indicates the "nbf" claim is in the future (beyond skew).
	NotYetValid

	// InvalidClaim indicates a claim failed validation (issuer, audience,
	// or a malformed numeric-date claim).
	InvalidClaim

	// CriticalHeaderMissingHandler indicates a name listed in "crit" has
	// no registered handler in the policy.
	CriticalHeaderMissingHandler

	// CriticalHeaderRejected indicates a registered handler rejected the
	// value of a critical header member.
	CriticalHeaderRejected

	// SizeLimitExceeded indicates the input exceeded policy.MaxTokenSize
	// before any decoding took place.
	SizeLimitExceeded

	// InstanceInvalidated indicates an operation was attempted on a
	// Document after it was disposed.
	InstanceInvalidated
)

func (k Kind) String() string {
	switch k {
	case MalformedToken:
		return "malformed token"
	case InvalidHeader:
		return "invalid header"
	case MissingEncryptionAlgorithm:
		return "missing encryption algorithm"
	case SignatureKeyNotFound:
		return "signature key not found"
	case EncryptionKeyNotFound:
		return "encryption key not found"
	case SignatureValidationFailed:
		return "signature validation failed"
	case DecryptionFailed:
		return "decryption failed"
	case DecompressionFailed:
		return "decompression failed"
	case Expired:
		return "expired"
	case NotYetValid:
		return "not yet valid"
	case InvalidClaim:
		return "invalid claim"
	case CriticalHeaderMissingHandler:
		return "critical header missing handler"
	case CriticalHeaderRejected:
		return "critical header rejected"
	case SizeLimitExceeded:
		return "size limit exceeded"
	case InstanceInvalidated:
		return "instance invalidated"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carrying a Kind plus an optional
// parameter name (header member, claim name) and an optional wrapped
// cause.
type Error struct {
	Kind  Kind
	Param string
	Cause error
}

func (e *Error) Error() string {
	if e.Param == "" && e.Cause == nil {
		return e.Kind.String()
	}
	if e.Cause == nil {
		return e.Kind.String() + ": " + e.Param
	}
	if e.Param == "" {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Param + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, jwterr.New(jwterr.MalformedToken)) style
// comparisons: a target *Error matches on Kind, and also on Param when
// the target sets one.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if te.Param != "" && te.Param != e.Param {
		return false
	}
	return te.Kind == e.Kind
}

// New creates an *Error of the given kind with no parameter or cause.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// WithParam creates an *Error of the given kind naming a header member or
// claim.
func WithParam(kind Kind, param string) *Error {
	return &Error{Kind: kind, Param: param}
}

// Wrap creates an *Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WrapParam creates an *Error of the given kind naming a parameter and
// wrapping cause.
func WrapParam(kind Kind, param string, cause error) *Error {
	return &Error{Kind: kind, Param: param, Cause: cause}
}

// KindOf returns the Kind carried by err, following the Unwrap chain, and
// ok=false if neither err nor anything in its chain is a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
