// Package compare checks a decoded firmware record against an MCU profile.
package compare

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/samcharles93/klipverify/internal/profile"
	"github.com/samcharles93/klipverify/internal/record"
)

// Check is the outcome for one profile key.
type Check struct {
	Key      string        `json:"key"`
	Expected profile.Value `json:"expected"`
	// Detected is the raw record value, or "" when the key is absent.
	Detected any  `json:"detected"`
	Present  bool `json:"present"`
	Matched  bool `json:"matched"`
}

// DetectedString renders the detected value for display.
func (c Check) DetectedString() string {
	return FormatValue(c.Detected)
}

type Report struct {
	Profile    string  `json:"profile"`
	Checks     []Check `json:"checks"`
	AllMatched bool    `json:"all_matched"`
}

// Mismatches returns the checks that failed.
func (r Report) Mismatches() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Matched {
			out = append(out, c)
		}
	}
	return out
}

// Compare checks every profile field, in profile order, against rec.Config.
// An absent key is compared as the empty string. Keys that only appear in
// the record are ignored.
func Compare(rec record.Record, p profile.Profile) Report {
	report := Report{
		Profile:    p.Name,
		Checks:     make([]Check, 0, len(p.Fields)),
		AllMatched: true,
	}
	for _, f := range p.Fields {
		detected, present := rec.Config[f.Key]
		if !present {
			detected = ""
		}
		matched := Equal(f.Value, detected)
		if !matched {
			report.AllMatched = false
		}
		report.Checks = append(report.Checks, Check{
			Key:      f.Key,
			Expected: f.Value,
			Detected: detected,
			Present:  present,
			Matched:  matched,
		})
	}
	return report
}

// Equal reports whether a decoded JSON value equals the expected value.
// Strings only equal strings; integers only equal JSON numbers with the
// same integral value, however they are spelled.
func Equal(expected profile.Value, detected any) bool {
	if want, ok := expected.Str(); ok {
		got, isStr := detected.(string)
		return isStr && got == want
	}
	want, _ := expected.Int64()
	switch got := detected.(type) {
	case json.Number:
		return numberEquals(got.String(), want)
	case int64:
		return got == want
	case int:
		return int64(got) == want
	case float64:
		return numberEquals(strconv.FormatFloat(got, 'g', -1, 64), want)
	default:
		return false
	}
}

func numberEquals(lit string, want int64) bool {
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n == want
	}
	// Bound the magnitude before building an exact rational from the literal.
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.Abs(f) > math.MaxInt64 {
		return false
	}
	r, ok := new(big.Rat).SetString(lit)
	if !ok || !r.IsInt() {
		return false
	}
	return r.Num().IsInt64() && r.Num().Int64() == want
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
