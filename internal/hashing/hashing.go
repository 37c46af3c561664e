// Package hashing derives stable cache keys from structured values.
package hashing

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// CanonJSON serializes v to canonical JSON: object keys sorted, no insignificant
// whitespace, no HTML escaping. Values that JSON cannot represent (NaN, Inf,
// channels, funcs) are rejected.
func CanonJSON(v any) ([]byte, error) {
	raw, err := encode(v)
	if err != nil {
		return nil, err
	}

	// Round-trip through a generic value so struct field order does not leak
	// into the key: encoding/json sorts map keys on output.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	return encode(generic)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode canonical json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// KeyOf returns the 32-byte BLAKE2b digest of v's canonical JSON, hex encoded.
func KeyOf(v any) (string, error) {
	data, err := CanonJSON(v)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
