package text

// Ellipsis marks a truncated string.
const Ellipsis = "..."

// Truncate returns s unchanged when it fits in max runes; otherwise it keeps the
// first max-len(Ellipsis) runes and appends Ellipsis so the result is exactly max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	keep := max - len(Ellipsis)
	if keep <= 0 {
		return string(runes[:max])
	}
	return string(runes[:keep]) + Ellipsis
}
