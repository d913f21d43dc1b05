package core

import "testing"

// TestDatasetFingerprintDeterministic tests that identical content hashes identically
func TestDatasetFingerprintDeterministic(t *testing.T) {
	a := NewDatasetFingerprint([]byte("region,revenue\nwest,10\n"))
	b := NewDatasetFingerprint([]byte("region,revenue\nwest,10\n"))
	if a != b {
		t.Errorf("Expected identical content to produce identical fingerprints, got %s and %s", a, b)
	}

	c := NewDatasetFingerprint([]byte("region,revenue\neast,10\n"))
	if a == c {
		t.Error("Expected different content to produce different fingerprints")
	}
}

// TestDatasetFingerprintShort tests log-friendly truncation
func TestDatasetFingerprintShort(t *testing.T) {
	f := NewDatasetFingerprint([]byte("data"))
	if len(f.Short()) != 12 {
		t.Errorf("Expected 12-character short form, got %d characters", len(f.Short()))
	}
	if f.String()[:12] != f.Short() {
		t.Error("Expected short form to be a prefix of the full fingerprint")
	}

	tiny := DatasetFingerprint("abc")
	if tiny.Short() != "abc" {
		t.Errorf("Expected short fingerprints to pass through unchanged, got %s", tiny.Short())
	}
}
