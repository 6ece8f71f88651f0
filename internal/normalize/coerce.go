package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// asString returns the string form of a value, or "" if it isn't one
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asMap returns v as a JSON-style object, or nil
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asBool accepts bools and the string forms loose clients send
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

// asNumber coerces a value to a finite float64. The second return is
// false when the value is absent, unparseable, or not finite.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// collapseWhitespace trims and squeezes internal whitespace runs to
// single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
