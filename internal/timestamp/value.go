// Package timestamp resolves the date representations found in stored
// documents into concrete time values, and provides calendar dates.
package timestamp

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Kind identifies which wire representation a Value holds.
type Kind int

const (
	// KindAbsent means the field was missing or null.
	KindAbsent Kind = iota
	// KindTime is an already concrete time value.
	KindTime
	// KindNative is a database-native timestamp exposing AsTime.
	KindNative
	// KindEpoch is a numeric epoch in milliseconds.
	KindEpoch
	// KindISO is a date or date-time string.
	KindISO
	// KindUnknown is any other shape; it never resolves.
	KindUnknown
)

// Timestamper is implemented by database-native timestamp values.
type Timestamper interface {
	AsTime() time.Time
}

// Native is a database-native timestamp: seconds and nanoseconds since the
// Unix epoch.
type Native struct {
	Seconds int64 `json:"seconds" yaml:"seconds"`
	Nanos   int64 `json:"nanoseconds" yaml:"nanoseconds"`
}

// AsTime implements Timestamper.
func (n Native) AsTime() time.Time {
	return time.Unix(n.Seconds, n.Nanos).UTC()
}

// Value is a tagged union over the accepted wire representations.
type Value struct {
	kind   Kind
	t      time.Time
	native Timestamper
	millis float64
	text   string
}

// Absent returns a Value for a missing field.
func Absent() Value { return Value{kind: KindAbsent} }

// FromTime wraps a concrete time.
func FromTime(t time.Time) Value { return Value{kind: KindTime, t: t} }

// FromNative wraps a database-native timestamp.
func FromNative(ts Timestamper) Value { return Value{kind: KindNative, native: ts} }

// FromEpoch wraps a millisecond epoch.
func FromEpoch(ms float64) Value { return Value{kind: KindEpoch, millis: ms} }

// FromISO wraps a date or date-time string.
func FromISO(s string) Value { return Value{kind: KindISO, text: s} }

// Kind returns the representation held by v.
func (v Value) Kind() Kind { return v.kind }

// Classify maps a decoded document field onto a Value.
func Classify(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Absent()
	case time.Time:
		return FromTime(x)
	case *time.Time:
		if x == nil {
			return Absent()
		}
		return FromTime(*x)
	case Timestamper:
		return FromNative(x)
	case string:
		return FromISO(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{kind: KindUnknown}
		}
		return FromEpoch(f)
	case map[string]any:
		if n, ok := nativeFromMap(x); ok {
			return FromNative(n)
		}
		return Value{kind: KindUnknown}
	}
	if f, ok := number(raw); ok {
		return FromEpoch(f)
	}
	return Value{kind: KindUnknown}
}

// Resolve converts v into a concrete time. The boolean is false when v is
// absent or cannot be converted.
func (v Value) Resolve() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindNative:
		return v.native.AsTime(), true
	case KindEpoch:
		if math.IsNaN(v.millis) || math.IsInf(v.millis, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.millis)), true
	case KindISO:
		return parseISO(v.text)
	default:
		return time.Time{}, false
	}
}

// Required resolves a required field, substituting now when the field is
// absent or malformed.
func Required(raw any, now time.Time) time.Time {
	if t, ok := Classify(raw).Resolve(); ok {
		return t
	}
	return now
}

// Optional resolves an optional field. Absent or malformed input yields nil.
func Optional(raw any) *time.Time {
	if t, ok := Classify(raw).Resolve(); ok {
		return &t
	}
	return nil
}

// isoLayouts are tried in order. Layouts without a zone are read as local
// time, except a bare date which is read as UTC midnight.
var isoLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02 15:04", true},
	{time.RFC1123Z, false},
	{time.RFC1123, false},
}

func parseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(dateFormat, s); err == nil {
		return d, true
	}
	for _, l := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, time.Local)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nativeFromMap recognizes serialized native timestamps such as
// {seconds: 1701388800, nanoseconds: 0} or {_seconds: ..., _nanoseconds: ...}.
func nativeFromMap(m map[string]any) (Native, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return Native{}, false
	}
	sec, ok := number(secRaw)
	if !ok {
		return Native{}, false
	}
	nanosRaw, found := m["nanoseconds"]
	if !found {
		nanosRaw = m["_nanoseconds"]
	}
	nanos, _ := number(nanosRaw)
	return Native{Seconds: int64(sec), Nanos: int64(nanos)}, true
}

func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
