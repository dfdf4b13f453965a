package jwk

import (
	"github.com/halimath/compactjose/jwa"
	"github.com/halimath/compactjose/jwe"
	"github.com/halimath/compactjose/jws"
)

// SignerKey is implemented by keys holding private/secret material that
// can produce a jws.Signer.
type SignerKey interface {
	Key
	CreateSigner(alg jwa.SignatureAlgorithm) (jws.Signer, error)
}

// VerifierKey is implemented by keys that can produce a jws.Verifier.
type VerifierKey interface {
	Key
	CreateVerifier(alg jwa.SignatureAlgorithm) (jws.Verifier, error)
}

// KeyWrapperKey is implemented by keys that can produce a jwe.KeyWrapper
// (public/symmetric key management material).
type KeyWrapperKey interface {
	Key
	CreateKeyWrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyWrapper, error)
}

// KeyUnwrapperKey is implemented by keys that can produce a
// jwe.KeyUnwrapper (private/symmetric key management material).
type KeyUnwrapperKey interface {
	Key
	CreateKeyUnwrapper(alg jwa.KeyManagementAlgorithm) (jwe.KeyUnwrapper, error)
}
