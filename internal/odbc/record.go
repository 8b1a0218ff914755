package odbc

import (
	"fmt"
	"time"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one result row. Keys keep the column order reported by the driver.
type Record = orderedmap.OrderedMap[string, any]

// ResultSet is an ordered sequence of records. The first record's keys are
// authoritative for column headers.
type ResultSet []*Record

// NewRecord creates an empty record.
func NewRecord() *Record {
	return orderedmap.New[string, any]()
}

// Keys returns the record's keys in column order.
func Keys(r *Record) []string {
	keys := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Field returns the first non-empty string value among the given keys.
// Drivers disagree on naming (ODBC 2 vs ODBC 3), so callers pass every
// spelling they accept.
func Field(r *Record, keys ...string) string {
	for _, key := range keys {
		v, ok := r.Get(key)
		if !ok || v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return ""
}

// FirstValue returns the value of the first column of the first record.
func (rs ResultSet) FirstValue() (any, bool) {
	if len(rs) == 0 {
		return nil, false
	}
	pair := rs[0].Oldest()
	if pair == nil {
		return nil, false
	}
	return pair.Value, true
}

// normalizeValue converts driver values to JSON-safe scalars
func normalizeValue(val any) any {
	switch v := val.(type) {
	case []byte:
		if !utf8.Valid(v) {
			return fmt.Sprintf("<binary data: %d bytes>", len(v))
		}
		return string(v)
	case time.Time:
		return v.Format(TimestampLayout)
	case nil:
		return nil
	default:
		return v
	}
}
