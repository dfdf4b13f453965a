// Package jwt implements the compact-serialization JSON Web Token
// reader and writer pipelines: tokenize, decode, resolve keys, verify
// or decrypt, validate claims, and recursively parse nested tokens on
// the read side; serialize, sign or wrap-and-encrypt, and assemble on
// the write side.
//
// The read side is organized around two types: Policy, an immutable,
// reusable bundle of keys, claim requirements, limits and
// critical-header handlers, and Document, the result of one successful
// Parse. A Document owns pooled buffers and must be disposed; its
// Header/Payload accessors are lazy views into the parsed JSON rather
// than unmarshaled structs.
package jwt
