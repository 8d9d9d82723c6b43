package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Amount is a money value as the clients write it: sometimes a JSON number,
// sometimes a numeric string. Anything that does not parse to a finite
// number, including a missing field, is invalid and must be skipped.
type Amount struct {
	v  float64
	ok bool
}

func NewAmount(v float64) Amount {
	return Amount{v: v, ok: isFinite(v)}
}

func (a Amount) Float() float64 { return a.v }

func (a Amount) Valid() bool { return a.ok }

func (a *Amount) UnmarshalJSON(b []byte) error {
	v, ok := parseNumber(b)
	*a = Amount{v: v, ok: ok}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.v, 'f', -1, 64)), nil
}

// Timestamp is a point in time stored as epoch milliseconds. It also accepts
// numeric strings and RFC 3339 dates, which older order records carry.
type Timestamp struct {
	ms float64
	ok bool
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{ms: float64(t.UnixMilli()), ok: true}
}

func (t Timestamp) Valid() bool { return t.ok }

func (t Timestamp) Millis() int64 { return int64(t.ms) }

func (t Timestamp) Time() time.Time { return time.UnixMilli(int64(t.ms)) }

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var dateLocation atomic.Pointer[time.Location]

// SetDateLocation sets the zone for stored dates that carry no UTC offset.
// The default is UTC; nil restores it.
func SetDateLocation(loc *time.Location) {
	dateLocation.Store(loc)
}

func dateLoc() *time.Location {
	if loc := dateLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if v, ok := parseNumber(b); ok {
		*t = Timestamp{ms: v, ok: true}
		return nil
	}
	*t = Timestamp{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, dateLoc()); err == nil {
			*t = TimestampOf(parsed)
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(int64(t.ms), 10)), nil
}

// parseNumber accepts a JSON number or a string holding one.
func parseNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Text is a free-form string field that some clients write as a bare number,
// such as phone numbers and payment references. Numbers and booleans keep
// their literal text; objects, arrays and null decode as empty.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(s)
		}
	case '{', '[', 'n':
	default:
		*t = Text(b)
	}
	return nil
}

// StringSet decodes both {"id": true} maps and ["id"] arrays.
type StringSet map[string]bool

func (s *StringSet) UnmarshalJSON(b []byte) error {
	out := StringSet{}
	var list []any
	if err := json.Unmarshal(b, &list); err == nil {
		for _, item := range list {
			if id, ok := item.(string); ok && id != "" {
				out[id] = true
			}
		}
		*s = out
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		*s = out
		return nil
	}
	for k, v := range m {
		if v == nil || v == false {
			continue
		}
		out[k] = true
	}
	*s = out
	return nil
}

func (s StringSet) Has(id string) bool { return s[id] }
