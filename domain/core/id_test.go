package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseReportID tests report ID parsing
func TestParseReportID(t *testing.T) {
	fresh := NewReportID()

	tests := []struct {
		input    string
		expected ReportID
		hasError bool
	}{
		{fresh.String(), fresh, false},
		{" " + fresh.String() + " ", fresh, false},
		{"", "", true},
		{"   ", "", true},
		{"../etc/passwd", "", true},
	}

	for _, tt := range tests {
		result, err := ParseReportID(tt.input)
		if tt.hasError && err == nil {
			t.Errorf("Expected error for input %q", tt.input)
		}
		if !tt.hasError && err != nil {
			t.Errorf("Unexpected error for input %q: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, result)
		}
	}
}

// TestHash tests content hashing helpers
func TestHash(t *testing.T) {
	a := NewHash([]byte("scrd-data"))
	b := NewHash([]byte("scrd-data"))
	c := NewHash([]byte("other"))

	if a != b {
		t.Error("Expected equal content to hash equally")
	}
	if a == c {
		t.Error("Expected different content to hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12 character short hash, got %q", a.Short())
	}
	if Hash("").IsEmpty() != true {
		t.Error("Expected empty hash to be empty")
	}
}
