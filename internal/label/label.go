package label

import "strings"

// MaxLen caps registry labels. Labels are open user vocabulary (any script,
// emoji prefixes included), so the cap counts runes, not bytes.
const MaxLen = 40

// Normalize trims surrounding whitespace and collapses inner runs of spaces.
// It never lowercases: a label is a display string, kept exactly as the user
// typed it on every historical record that references it.
func Normalize(s string) string {
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if r := []rune(out); len(r) > MaxLen {
		out = string(r[:MaxLen])
	}
	return out
}

// Valid reports whether a normalized label is usable as a registry entry.
func Valid(s string) bool {
	return s != "" && len([]rune(s)) <= MaxLen
}

// Equal compares two labels case-insensitively. Registries use it to reject
// duplicates; record matching stays byte-exact.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Contains reports whether list already holds label under Equal.
func Contains(list []string, s string) bool {
	for _, l := range list {
		if Equal(l, s) {
			return true
		}
	}
	return false
}
