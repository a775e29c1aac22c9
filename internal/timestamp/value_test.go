package timestamp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClassifyKinds(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		raw  any
		want Kind
	}{
		{"nil", nil, KindAbsent},
		{"time", now, KindTime},
		{"nil pointer", (*time.Time)(nil), KindAbsent},
		{"pointer", &now, KindTime},
		{"native", Native{Seconds: 1}, KindNative},
		{"native map", map[string]any{"_seconds": 1, "_nanoseconds": 0}, KindNative},
		{"string", "2023-12-01", KindISO},
		{"int", 1701388800000, KindEpoch},
		{"float", float64(1701388800000), KindEpoch},
		{"json number", json.Number("1701388800000"), KindEpoch},
		{"bool", true, KindUnknown},
		{"unrelated map", map[string]any{"foo": 1}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw).Kind(); got != tt.want {
				t.Errorf("Classify(%v).Kind() = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveRepresentations(t *testing.T) {
	want := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	inputs := map[string]any{
		"time":     want,
		"native":   Native{Seconds: want.Unix()},
		"map":      map[string]any{"seconds": want.Unix(), "nanoseconds": 0},
		"epoch ms": want.UnixMilli(),
		"rfc3339":  "2023-12-01T00:00:00Z",
		"date":     "2023-12-01",
	}
	for name, raw := range inputs {
		got, ok := Classify(raw).Resolve()
		if !ok {
			t.Fatalf("%s: expected %v to resolve", name, raw)
		}
		if !got.Equal(want) {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestRequiredFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	for _, raw := range []any{nil, "not a date", true, map[string]any{}} {
		if got := Required(raw, now); !got.Equal(now) {
			t.Errorf("Required(%v) = %v, want now", raw, got)
		}
	}
}

func TestOptionalLeavesMalformedUnset(t *testing.T) {
	for _, raw := range []any{nil, "", "31/12/2023", []string{"x"}} {
		if got := Optional(raw); got != nil {
			t.Errorf("Optional(%v) = %v, want nil", raw, got)
		}
	}
	if got := Optional("2023-12-31T15:00:00Z"); got == nil || got.Hour() != 15 {
		t.Errorf("Optional(rfc3339) = %v, want 15:00", got)
	}
}

func TestRangeContainsIsInclusive(t *testing.T) {
	r := Range{From: NewDate(2023, 12, 1), To: NewDate(2023, 12, 31)}
	if !r.Contains(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected first day to be included")
	}
	if !r.Contains(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)) {
		t.Error("expected last day to be included")
	}
	if r.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected day after range to be excluded")
	}

	narrow := Range{From: NewDate(2023, 12, 2), To: NewDate(2023, 12, 30)}
	if narrow.Contains(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) ||
		narrow.Contains(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected boundary days outside the narrow range to be excluded")
	}
}

func TestRangeValid(t *testing.T) {
	if (Range{From: NewDate(2023, 12, 2), To: NewDate(2023, 12, 1)}).Valid() {
		t.Error("expected inverted range to be invalid")
	}
	if !(Range{From: NewDate(2023, 12, 2)}).Valid() {
		t.Error("expected open-ended range to be valid")
	}
}
