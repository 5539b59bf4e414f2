// Package colors normalizes the colour strings found in templates.
//
// Templates carry colours the way a designer typed them: CSS names ("red",
// "RebeccaPurple"), six digit hex with or without a leading '#', or nothing at
// all. Every renderer converts them through Normalize so that all backends see
// the same canonical "#rrggbb" value.
package colors

import (
	"strconv"
	"strings"
)

// Default is returned for anything that cannot be interpreted as a colour.
const Default = "#000000"

// Normalize maps a named or hex colour to lower-case "#rrggbb".
// Named colours win over hex; anything else yields Default.
func Normalize(s string) string {
	if s == "" {
		return Default
	}
	if hex, ok := named[strings.ToLower(s)]; ok {
		return hex
	}
	if h, ok := parseHex6(s); ok {
		return h
	}
	return Default
}

// NormalizeValue is Normalize for values that came out of runtime data.
// Non-string input (nil, numbers, objects) yields Default.
func NormalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return Default
	}
	return Normalize(s)
}

// RGB returns the components of the normalized form of s.
func RGB(s string) (r, g, b int) {
	h := Normalize(s)
	n, _ := strconv.ParseUint(h[1:], 16, 32)
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)
}

// Hex returns the normalized colour without its leading '#', as expected by
// word-processing formats.
func Hex(s string) string {
	return Normalize(s)[1:]
}

func parseHex6(s string) (string, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return "", false
		}
	}
	return "#" + strings.ToLower(s), true
}
