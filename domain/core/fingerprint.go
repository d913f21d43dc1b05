package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// DatasetFingerprint identifies uploaded dataset content. Two uploads of the
// same bytes share a fingerprint regardless of filename.
type DatasetFingerprint string

// NewDatasetFingerprint hashes raw upload content.
func NewDatasetFingerprint(content []byte) DatasetFingerprint {
	sum := sha256.Sum256(content)
	return DatasetFingerprint(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (f DatasetFingerprint) String() string {
	return string(f)
}

// Short returns a truncated fingerprint suitable for log lines.
func (f DatasetFingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}
