// Package history reconstructs structured audit records from the loosely
// typed log entries returned by the payments backend. Upstream responses mix
// plain strings, JSON-encoded strings, and partial objects in one list; this
// package converts each element with one deterministic rule per shape and
// never fails a batch because a single entry is malformed.
package history

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// FallbackAction is the generic tag assigned when an entry carries no
// action or status of its own.
const FallbackAction = "INFO"

// actionTagWindow bounds how far into a plain string a colon may appear for
// its prefix to be treated as an action tag ("PENDING: awaiting funds").
const actionTagWindow = 30

// Record is the uniform view of one upstream history entry. Records are a
// derived, ephemeral view built each time upstream data is fetched; they are
// never stored.
type Record struct {
	// ID is unique within the batch, generated when the source has none so
	// callers can re-key or sort the list without identity collisions.
	ID     string         `json:"id"`
	Action string         `json:"action"`
	Detail string         `json:"detail,omitempty"`
	// Timestamp falls back to the normalization time; the colon-tagged and
	// free-form upstream formats carry no per-entry time.
	Timestamp time.Time      `json:"timestamp"`
	// Fields passes through every field of structured entries untouched.
	Fields map[string]any `json:"fields,omitempty"`
}

// Normalize converts a heterogeneous upstream list into records, one per
// element, preserving order. The result is always non-nil, possibly empty.
//
// Per element, in order of precedence:
//  1. a string that strictly decodes to a JSON object is lifted like an
//     object entry;
//  2. a string with a colon inside the first 30 characters splits into an
//     uppercased action tag and a detail;
//  3. any other string becomes free-form detail under the fallback tag;
//  4. an object passes its fields through, filling only the required
//     columns when absent;
//  5. anything else is stringified and treated as rule 3.
func Normalize(entries []any) []Record {
	now := time.Now()
	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		records = append(records, normalizeEntry(entry, i, now))
	}
	return records
}

func normalizeEntry(entry any, index int, now time.Time) Record {
	switch v := entry.(type) {
	case string:
		return normalizeString(v, index, now)
	case map[string]any:
		return normalizeObject(v, index, now)
	default:
		return Record{
			ID:        generateID(index, now),
			Action:    FallbackAction,
			Detail:    fmt.Sprint(v),
			Timestamp: now,
		}
	}
}

func normalizeString(s string, index int, now time.Time) Record {
	// Rule 1: the string may itself be a JSON-encoded object.
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		if obj, ok := decoded.(map[string]any); ok {
			return normalizeObject(obj, index, now)
		}
	}

	// Rule 2: "PENDING: awaiting funds" → action tag + detail.
	if idx := strings.Index(s, ":"); idx > 0 && idx <= actionTagWindow {
		return Record{
			ID:        generateID(index, now),
			Action:    strings.ToUpper(strings.TrimSpace(s[:idx])),
			Detail:    strings.TrimSpace(s[idx+1:]),
			Timestamp: now,
		}
	}

	// Rule 3: free-form detail under the fallback tag.
	return Record{
		ID:        generateID(index, now),
		Action:    FallbackAction,
		Detail:    s,
		Timestamp: now,
	}
}

// liftedEntry collects the string columns of a structured entry.
// Per-column fallback order:
//
//	Action: action → status → FallbackAction
//	Detail: detail → reason → message → ""
type liftedEntry struct {
	Action  string `mapstructure:"action"`
	Status  string `mapstructure:"status"`
	Detail  string `mapstructure:"detail"`
	Reason  string `mapstructure:"reason"`
	Message string `mapstructure:"message"`
}

// normalizeObject fills only the columns the entry lacks; every column falls
// back independently, so one malformed field (say, a nested object where a
// string was expected) cannot discard a supplied id or timestamp.
func normalizeObject(obj map[string]any, index int, now time.Time) Record {
	record := Record{
		Action:    FallbackAction,
		Timestamp: now,
		Fields:    maps.Clone(obj),
	}

	var lifted liftedEntry
	if decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &lifted,
		WeaklyTypedInput: true,
	}); err == nil {
		// A decode error leaves only the failing column zero; the columns
		// that decoded cleanly keep their values.
		_ = decoder.Decode(obj)
	}

	switch {
	case lifted.Action != "":
		record.Action = lifted.Action
	case lifted.Status != "":
		record.Action = lifted.Status
	}

	switch {
	case lifted.Detail != "":
		record.Detail = lifted.Detail
	case lifted.Reason != "":
		record.Detail = lifted.Reason
	case lifted.Message != "":
		record.Detail = lifted.Message
	}

	// id and timestamp are read from the entry directly, not through the
	// struct decode, so their lifting never depends on the other columns.
	if id, ok := obj["id"]; ok && id != nil {
		if s := strings.TrimSpace(fmt.Sprint(id)); s != "" {
			record.ID = s
		}
	}
	if record.ID == "" {
		record.ID = generateID(index, now)
	}

	if ts, ok := parseTimestamp(obj["timestamp"]); ok {
		record.Timestamp = ts
	}

	return record
}

// parseTimestamp accepts the timestamp shapes seen in upstream payloads:
// RFC 3339 strings, epoch seconds, or an already-decoded time.Time.
func parseTimestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return ts, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, ts); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return time.Unix(int64(ts), 0).UTC(), true
	case int64:
		return time.Unix(ts, 0).UTC(), true
	case int:
		return time.Unix(int64(ts), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// generateID combines list position, wall clock, and a random suffix so
// generated identities cannot collide within a batch even when entries are
// normalized in the same nanosecond.
func generateID(index int, now time.Time) string {
	return fmt.Sprintf("h-%d-%d-%s", index, now.UnixNano(), randomSuffix())
}

func randomSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uuid.NewString()[:8]
	}
	return base58.Encode(b[:])
}
