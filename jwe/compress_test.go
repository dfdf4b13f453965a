package jwe

import (
	"bytes"
	"strings"
	"testing"
)

func TestDEFCompressorRoundTrip(t *testing.T) {
	c := DEFCompressor()
	plaintext := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 50))

	compressed, err := c.Compress(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(plaintext) {
		t.Errorf("expected compression to shrink a repetitive payload: %d >= %d", len(compressed), len(plaintext))
	}

	got, err := c.Decompress(compressed, len(plaintext)+1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("round trip did not reproduce the original plaintext")
	}
}

func TestDEFCompressorEnforcesSizeLimit(t *testing.T) {
	c := DEFCompressor()
	plaintext := []byte(strings.Repeat("a", 10000))

	compressed, err := c.Compress(plaintext)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Decompress(compressed, 100); err == nil {
		t.Error("expected decompression to fail when exceeding the size limit")
	}
}
