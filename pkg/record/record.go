// Package record defines the opaque record shape returned by the collection service.
package record

import (
	"time"
)

// DateTimeLayout is the timestamp layout used by the service for system fields.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// System field names present on every record.
const (
	FieldID      = "id"
	FieldCreated = "created"
	FieldUpdated = "updated"
)

// Record is a single collection entry. Field values are whatever the service
// decoded from JSON; the client never interprets them beyond the system fields.
type Record map[string]any

// ID returns the server-assigned identifier, or "" when absent.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns the named field when it holds a string.
func (r Record) String(field string) string {
	if r == nil {
		return ""
	}
	s, _ := r[field].(string)
	return s
}

// Created returns the parsed creation timestamp. The zero time is returned when
// the field is missing or malformed.
func (r Record) Created() time.Time {
	return r.time(FieldCreated)
}

// Updated returns the parsed last-modification timestamp.
func (r Record) Updated() time.Time {
	return r.time(FieldUpdated)
}

func (r Record) time(field string) time.Time {
	raw := r.String(field)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateTimeLayout, raw)
	if err != nil {
		// Older servers emit RFC3339.
		if t, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return time.Time{}
		}
	}
	return t
}

// Clone returns a shallow copy so callers can hand records across goroutines
// without sharing the top-level map.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// FormatTime renders t in the service's datetime layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}
