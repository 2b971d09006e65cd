package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalize_MixedBatch covers the three canonical upstream shapes in
// one batch: a colon-tagged string, a JSON-encoded string, and a partial
// object.
func TestNormalize_MixedBatch(t *testing.T) {
	records := Normalize([]any{
		"PENDING: awaiting funds",
		`{"action":"RETRY","timestamp":"2024-01-01T00:00:00Z"}`,
		map[string]any{"status": "ok"},
	})
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "PENDING", first.Action)
	assert.Equal(t, "awaiting funds", first.Detail)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())

	second := records[1]
	assert.Equal(t, "RETRY", second.Action)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), second.Timestamp.UTC())

	third := records[2]
	assert.Equal(t, "ok", third.Action, "status falls back into the action column")
	assert.Equal(t, map[string]any{"status": "ok"}, third.Fields)
	assert.NotEmpty(t, third.ID)
	assert.False(t, third.Timestamp.IsZero())
}

// TestNormalize_GeneratedIDsUnique verifies no two generated identifiers
// collide across a large synthetic batch.
func TestNormalize_GeneratedIDsUnique(t *testing.T) {
	entries := make([]any, 10000)
	for i := range entries {
		entries[i] = "synthetic entry"
	}

	records := Normalize(entries)
	require.Len(t, records, 10000)

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		_, dup := seen[record.ID]
		require.False(t, dup, "duplicate id %s", record.ID)
		seen[record.ID] = struct{}{}
	}
}

// TestNormalize_StringRules covers the per-string precedence: JSON object
// first, then colon tag, then free-form fallback.
func TestNormalize_StringRules(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAction string
		wantDetail string
	}{
		{
			name:       "colon tag uppercased",
			input:      "approved: operator confirmed",
			wantAction: "APPROVED",
			wantDetail: "operator confirmed",
		},
		{
			name:       "colon past the window is free-form",
			input:      "the disbursement was scheduled yesterday at noon: twice",
			wantAction: FallbackAction,
			wantDetail: "the disbursement was scheduled yesterday at noon: twice",
		},
		{
			name:       "leading colon is free-form",
			input:      ": no tag here",
			wantAction: FallbackAction,
			wantDetail: ": no tag here",
		},
		{
			name:       "plain text",
			input:      "settled without incident",
			wantAction: FallbackAction,
			wantDetail: "settled without incident",
		},
		{
			name:       "json array is not an object",
			input:      `["a","b"]`,
			wantAction: FallbackAction,
			wantDetail: `["a","b"]`,
		},
		{
			name:       "json number is not an object",
			input:      "42",
			wantAction: FallbackAction,
			wantDetail: "42",
		},
		{
			name:       "broken json with colon inside window",
			input:      `{"action": broken`,
			wantAction: `{"ACTION"`,
			wantDetail: "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Normalize([]any{tt.input})
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantAction, records[0].Action)
			assert.Equal(t, tt.wantDetail, records[0].Detail)
		})
	}
}

// TestNormalize_ObjectFallbacks covers the documented per-column fallback
// order for structured entries.
func TestNormalize_ObjectFallbacks(t *testing.T) {
	records := Normalize([]any{
		map[string]any{
			"id":        "evt-1",
			"action":    "EXECUTED",
			"status":    "done",
			"detail":    "payout sent",
			"timestamp": "2024-06-01T10:30:00Z",
			"amount":    125.50,
		},
		map[string]any{
			"status": "FAILED",
			"reason": "insufficient balance",
		},
		map[string]any{},
	})
	require.Len(t, records, 3)

	full := records[0]
	assert.Equal(t, "evt-1", full.ID)
	assert.Equal(t, "EXECUTED", full.Action, "action wins over status")
	assert.Equal(t, "payout sent", full.Detail)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), full.Timestamp.UTC())
	assert.Equal(t, 125.50, full.Fields["amount"], "extra fields pass through")

	partial := records[1]
	assert.Equal(t, "FAILED", partial.Action, "status fills a missing action")
	assert.Equal(t, "insufficient balance", partial.Detail, "reason fills a missing detail")
	assert.NotEmpty(t, partial.ID)

	empty := records[2]
	assert.Equal(t, FallbackAction, empty.Action)
	assert.Empty(t, empty.Detail)
	assert.NotEmpty(t, empty.ID)
	assert.False(t, empty.Timestamp.IsZero())
}

// TestNormalize_MalformedColumnKeepsID verifies one malformed column does
// not discard the entry's supplied identity or the columns that decoded
// cleanly.
func TestNormalize_MalformedColumnKeepsID(t *testing.T) {
	records := Normalize([]any{
		map[string]any{
			"id":        "evt-9",
			"status":    "ok",
			"detail":    map[string]any{"x": 1},
			"timestamp": "2024-06-01T10:30:00Z",
		},
	})
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "evt-9", record.ID)
	assert.Equal(t, "ok", record.Action)
	assert.Empty(t, record.Detail, "only the malformed column falls back")
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), record.Timestamp.UTC())
}

// TestNormalize_NumericID verifies numeric upstream ids are stringified
// rather than dropped.
func TestNormalize_NumericID(t *testing.T) {
	records := Normalize([]any{
		map[string]any{"id": float64(7), "status": "ok"},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].ID)
}

// TestNormalize_EpochTimestamp verifies epoch-second timestamps parse.
func TestNormalize_EpochTimestamp(t *testing.T) {
	records := Normalize([]any{
		map[string]any{"status": "ok", "timestamp": float64(1700000000)},
	})
	require.Len(t, records, 1)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), records[0].Timestamp)
}

// TestNormalize_UnparseableTimestamp verifies a junk timestamp falls back
// to the normalization time instead of failing the entry.
func TestNormalize_UnparseableTimestamp(t *testing.T) {
	before := time.Now()
	records := Normalize([]any{
		map[string]any{"status": "ok", "timestamp": "yesterday-ish"},
	})
	require.Len(t, records, 1)
	assert.False(t, records[0].Timestamp.Before(before))
}

// TestNormalize_OtherTypes verifies non-string, non-object elements are
// stringified under the fallback tag.
func TestNormalize_OtherTypes(t *testing.T) {
	records := Normalize([]any{42, true, nil, []any{"x"}})
	require.Len(t, records, 4)

	assert.Equal(t, "42", records[0].Detail)
	assert.Equal(t, "true", records[1].Detail)
	assert.Equal(t, "<nil>", records[2].Detail)
	assert.Equal(t, "[x]", records[3].Detail)
	for _, record := range records {
		assert.Equal(t, FallbackAction, record.Action)
		assert.NotEmpty(t, record.ID)
	}
}

// TestNormalize_EmptyBatch verifies the result is an empty slice, never nil.
func TestNormalize_EmptyBatch(t *testing.T) {
	records := Normalize(nil)
	require.NotNil(t, records)
	assert.Empty(t, records)

	records = Normalize([]any{})
	require.NotNil(t, records)
	assert.Empty(t, records)
}
