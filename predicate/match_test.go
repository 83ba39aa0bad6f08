package predicate

import "testing"

func TestTypeMatches(t *testing.T) {
	tests := []struct {
		pattern   string
		eventType string
		want      bool
	}{
		// Wildcard "*" matches everything.
		{"*", "page.created", true},
		{"*", "comment.deleted", true},

		// Exact match and mismatch.
		{"page.created", "page.created", true},
		{"page.created", "page.moved", false},
		{"page.created", "database.created", false},

		// Single-segment wildcard.
		{"page.*", "page.created", true},
		{"page.*", "page.properties_updated", true},
		{"page.*", "database.created", false},
		{"*.created", "data_source.created", true},
		{"*.created", "comment.updated", false},

		// Segment count mismatch.
		{"page", "page.created", false},
		{"page.*.x", "page.created", false},

		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_vs_"+tt.eventType, func(t *testing.T) {
			if got := TypeMatches(tt.pattern, tt.eventType); got != tt.want {
				t.Errorf("TypeMatches(%q, %q) = %v, want %v", tt.pattern, tt.eventType, got, tt.want)
			}
		})
	}
}

func TestValidPattern(t *testing.T) {
	for _, p := range []string{"*", "page.*", "*.created", "comment.created"} {
		if !ValidPattern(p) {
			t.Errorf("ValidPattern(%q) = false", p)
		}
	}
	for _, p := range []string{"", ".", "page.", ".created", "page..created"} {
		if ValidPattern(p) {
			t.Errorf("ValidPattern(%q) = true", p)
		}
	}
}
