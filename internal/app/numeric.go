package app

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// safeNumber coerces an arbitrary decoded-JSON value into a finite float64.
// Returns false for anything non-numeric, NaN, or infinite. Callers must never
// propagate non-finite numbers past this boundary.
func safeNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return safeNumber(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return safeNumber(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// firstNumber returns the first finite number found under the candidate keys.
func firstNumber(record map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := record[key]; ok {
			if n, ok := safeNumber(raw); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// firstString returns the first non-empty string found under the candidate keys.
func firstString(record map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := record[key]
		if !ok {
			continue
		}
		if s, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}
