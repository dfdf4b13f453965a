package jwe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/halimath/compactjose/jwa"
)

// defCompressor implements the "DEF" (raw DEFLATE, RFC 1951) compression
// algorithm, RFC 7516 section 4.1.3. It uses klauspost/compress/flate,
// an API-compatible drop-in for the standard library's compress/flate,
// rather than importing compress/flate directly.
type defCompressor struct{}

// DEFCompressor returns a Compressor implementing "DEF".
func DEFCompressor() Compressor { return defCompressor{} }

func (defCompressor) Alg() jwa.CompressionAlgorithm { return jwa.DEF }

func (defCompressor) Compress(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates src, stopping and returning an error once more
// than maxSize bytes have been produced. This bounds the classic
// "decompression bomb" amplification an attacker-controlled JWE
// ciphertext could otherwise trigger.
func (defCompressor) Decompress(src []byte, maxSize int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()

	limited := io.LimitReader(r, int64(maxSize)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("jwe: decompression failed: %w", err)
	}
	if len(out) > maxSize {
		return nil, fmt.Errorf("jwe: decompressed payload exceeds maximum size of %d bytes", maxSize)
	}
	return out, nil
}
