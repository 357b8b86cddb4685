package record

import (
	"testing"
	"time"
)

func TestRecordAccessors(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 30, 0, 123000000, time.UTC)
	r := Record{
		"id":      "abc123",
		"created": FormatTime(created),
		"updated": "2024-05-02T08:00:00Z",
		"name":    "Bob",
		"age":     42.0,
	}

	if r.ID() != "abc123" {
		t.Fatalf("expected id abc123, got %q", r.ID())
	}
	if !r.Created().Equal(created) {
		t.Fatalf("expected created %v, got %v", created, r.Created())
	}
	if r.Updated().IsZero() {
		t.Fatalf("expected RFC3339 updated to parse")
	}
	if r.String("age") != "" {
		t.Fatalf("non-string field should read as empty")
	}

	t.Run("nil_record", func(t *testing.T) {
		var n Record
		if n.ID() != "" || !n.Created().IsZero() {
			t.Fatalf("nil record should have empty accessors")
		}
		if n.Clone() != nil {
			t.Fatalf("clone of nil should be nil")
		}
	})

	t.Run("clone_is_independent", func(t *testing.T) {
		cp := r.Clone()
		cp["name"] = "Alice"
		if r.String("name") != "Bob" {
			t.Fatalf("clone mutated original")
		}
	})

	t.Run("malformed_time", func(t *testing.T) {
		bad := Record{"created": "yesterday"}
		if !bad.Created().IsZero() {
			t.Fatalf("expected zero time for malformed timestamp")
		}
	})
}
