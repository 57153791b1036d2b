package utils

// TruncateMessage shortens s to max runes, appending an ellipsis when cut.
func TruncateMessage(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
