// Package tagval extracts usable values from noisy OSM tag strings.
// Tag values arrive in whatever shape mappers typed: "12", "12 m",
// "approx 12.5 ft", "3;4", or nothing at all. Failure is always signaled
// by the ok return, never by an error.
package tagval

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Number scans keys in priority order and returns the first numeric value
// embedded in a tag string. Garbage around the number is ignored;
// multi-values ("3;4") yield the first entry's number.
func Number(tags map[string]string, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := tags[key]
		if !ok {
			continue
		}
		if v, ok := Parse(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// Parse extracts the first numeric substring (optionally signed and
// fractional) from a raw tag value.
func Parse(raw string) (float64, bool) {
	m := numberRe.FindString(First(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Raw returns the first non-empty raw value among keys, in priority order.
func Raw(tags map[string]string, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := tags[key]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// First returns the first entry of a semicolon-separated tag value.
// OSM multi-values ("primary;secondary") only consult the first entry.
func First(raw string) string {
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		return strings.TrimSpace(raw[:i])
	}
	return strings.TrimSpace(raw)
}

// IsFeet reports whether a raw width value carries an imperial unit
// marker ("ft", "feet", or the foot tick).
func IsFeet(raw string) bool {
	s := strings.ToLower(raw)
	return strings.Contains(s, "ft") || strings.Contains(s, "feet") || strings.Contains(s, "'")
}
