// Package jwk implements JSON Web Keys per RFC 7517: a Key interface
// over the common metadata members, one concrete type per "kty", and
// the capability-dispatch methods the reader/writer pipelines need:
// CreateSigner/CreateVerifier wire a key into jws,
// CreateKeyWrapper/CreateKeyUnwrapper wire it into jwe.
package jwk

import (
	"encoding/json"
	"fmt"
)

// KeyType defines the types of keys as specified in RFC 7518 section 6.1.
type KeyType string

const (
	ParamKeyType = "kty"

	KeyTypeEC  KeyType = "EC"
	KeyTypeRSA KeyType = "RSA"
	KeyTypeOct KeyType = "oct"
)

// KeyUse defines the types of key use as specified in RFC 7517 section 4.2.
type KeyUse string

const (
	ParamUse = "use"

	UseSignature  KeyUse = "sig"
	UseEncryption KeyUse = "enc"
)

// KeyOp defines the types of key operations as specified in RFC 7517
// section 4.3.
type KeyOp string

const (
	ParamKeyOps = "key_ops"

	KeyOpSign       KeyOp = "sign"
	KeyOpVerify     KeyOp = "verify"
	KeyOpEncrypt    KeyOp = "encrypt"
	KeyOpDecrypt    KeyOp = "decrypt"
	KeyOpWrapKey    KeyOp = "wrapKey"
	KeyOpUnwrapKey  KeyOp = "unwrapKey"
	KeyOpDeriveKey  KeyOp = "deriveKey"
	KeyOpDeriveBits KeyOp = "deriveBits"
)

const (
	ParamAlg = "alg"
	ParamKID = "kid"
)

// Key defines the interface implemented by all key types: the common
// metadata getters of RFC 7517 section 4, plus a thumbprint (RFC 7638).
// The signing/encryption capabilities (CreateSigner, CreateVerifier,
// CreateKeyWrapper, CreateKeyUnwrapper) are declared on narrower
// interfaces in capabilities.go since not every key supports every capability: a
// public key cannot sign, a symmetric key has no agreement capability.
type Key interface {
	Type() KeyType
	Use() KeyUse
	Operations() []KeyOp
	Algorithm() string
	ID() string

	// Thumbprint computes the RFC 7638 JWK thumbprint using SHA-256.
	Thumbprint() (string, error)
}

// KeyDescription provides the common metadata getters shared by every
// concrete key type. It is embedded in each key struct and carries its
// own JSON tags so the embedding struct's MarshalJSON/UnmarshalJSON can
// delegate to it directly.
type KeyDescription struct {
	KeyUse        KeyUse  `json:"use,omitempty"`
	KeyOperations []KeyOp `json:"key_ops,omitempty"`
	KeyAlgorithm  string  `json:"alg,omitempty"`
	KeyID         string  `json:"kid,omitempty"`
}

func (k *KeyDescription) Use() KeyUse         { return k.KeyUse }
func (k *KeyDescription) Operations() []KeyOp { return k.KeyOperations }
func (k *KeyDescription) Algorithm() string   { return k.KeyAlgorithm }
func (k *KeyDescription) ID() string          { return k.KeyID }

// MarshalKey marshals k into its JWK JSON representation.
func MarshalKey(k Key) ([]byte, error) {
	return json.Marshal(k)
}

// UnmarshalKey unmarshals JSON data as a JWK and returns the concrete
// type matching "kty", choosing between the public and private variant
// based on the presence of the private-key-only member ("d" for RSA and
// EC).
func UnmarshalKey(data []byte) (Key, error) {
	var probe struct {
		Type KeyType `json:"kty"`
		D    string  `json:"d"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case KeyTypeEC:
		if probe.D != "" {
			var k ECDSAPrivateKey
			if err := json.Unmarshal(data, &k); err != nil {
				return nil, err
			}
			return &k, nil
		}
		var k ECDSAPublicKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeRSA:
		if probe.D != "" {
			var k RSAPrivateKey
			if err := json.Unmarshal(data, &k); err != nil {
				return nil, err
			}
			return &k, nil
		}
		var k RSAPublicKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	case KeyTypeOct:
		var k SymmetricKey
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return &k, nil

	default:
		return nil, fmt.Errorf("jwk: unsupported kty: %s", probe.Type)
	}
}
