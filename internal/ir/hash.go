package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainUpdate = "sdbind/update/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// UpdateID computes the content-addressed ID of one directive update.
// The ID is stable for the same run, seq, key and directive, which makes
// journal writes idempotent.
func UpdateID(runID string, seq int64, key, directive, argument string) (string, error) {
	obj := map[string]any{
		"run_id":    runID,
		"seq":       seq,
		"key":       key,
		"directive": directive,
		"argument":  argument,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("UpdateID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainUpdate, canonical), nil
}

// MustUpdateID is like UpdateID but panics on error.
func MustUpdateID(runID string, seq int64, key, directive, argument string) string {
	id, err := UpdateID(runID, seq, key, directive, argument)
	if err != nil {
		panic(err)
	}
	return id
}
