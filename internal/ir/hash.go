package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainAPI    = "routegen/api/v1"
	DomainOutput = "routegen/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// APIHash computes the content-addressed identity of an API description.
// Two descriptions that differ only in map ordering or Unicode
// normalization hash identically.
func APIHash(api *API) (string, error) {
	canonical, err := MarshalCanonical(api)
	if err != nil {
		return "", fmt.Errorf("APIHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAPI, canonical), nil
}

// OutputHash computes the identity of one generated file.
func OutputHash(content []byte) string {
	return hashWithDomain(DomainOutput, content)
}
