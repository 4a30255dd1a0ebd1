package storage

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the canonical encoding for timestamps in both backends:
// SQLite stores TEXT columns, DynamoDB stores string attributes.
const TimeLayout = time.RFC3339Nano

// Record is one persisted row/item as a flat attribute map. Values are
// limited to scalars: string, bool, int/int64/float64, time.Time, and nil.
// Accessors are tolerant of the representation differences between the two
// backends (SQLite integers for booleans, strings for timestamps, DynamoDB
// numbers for ints).
type Record map[string]any

// Has reports whether the attribute is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the attribute as a string, or "" when absent.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// StringPtr returns the attribute as a *string, or nil when absent.
func (r Record) StringPtr(key string) *string {
	if !r.Has(key) {
		return nil
	}
	s := r.String(key)
	return &s
}

// Int returns the attribute as an int, tolerating the numeric types each
// backend hands back. Absent attributes return 0.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// IntPtr returns the attribute as an *int, or nil when absent.
func (r Record) IntPtr(key string) *int {
	if !r.Has(key) {
		return nil
	}
	n := r.Int(key)
	return &n
}

// Bool returns the attribute as a bool. SQLite represents booleans as
// integers, so nonzero numbers count as true.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}

// BoolPtr returns the attribute as a *bool, or nil when absent.
func (r Record) BoolPtr(key string) *bool {
	if !r.Has(key) {
		return nil
	}
	b := r.Bool(key)
	return &b
}

// Time returns the attribute as a time.Time, parsing the canonical string
// encoding when needed. Absent or unparseable values return the zero time.
func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(TimeLayout, v)
		if err != nil {
			return time.Time{}
		}
		return t
	case []byte:
		t, err := time.Parse(TimeLayout, string(v))
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// TimePtr returns the attribute as a *time.Time, or nil when absent.
func (r Record) TimePtr(key string) *time.Time {
	if !r.Has(key) {
		return nil
	}
	t := r.Time(key)
	return &t
}

// UUID parses the attribute as a UUID, returning uuid.Nil when absent or
// malformed.
func (r Record) UUID(key string) uuid.UUID {
	id, err := uuid.Parse(r.String(key))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// UUIDPtr parses the attribute as a *uuid.UUID, or nil when absent.
func (r Record) UUIDPtr(key string) *uuid.UUID {
	if !r.Has(key) {
		return nil
	}
	id := r.UUID(key)
	if id == uuid.Nil {
		return nil
	}
	return &id
}
