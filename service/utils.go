package service

// truncateRunes deterministically cuts text at a rune boundary so the same
// input always truncates at the same point.
func truncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
