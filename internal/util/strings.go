package util

// TruncateRunes shortens s to at most max runes, appending an ellipsis
// when anything was cut. Max values below 1 return the empty string.
func TruncateRunes(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
