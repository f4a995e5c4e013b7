package inject

import "strings"

// FormatPayload serializes frame lines into the single chat payload the
// target accepts. The transport silently collapses characters in
// fixed-size groups, so a space is inserted after every width runes of
// concatenated output; a trailing delimiter is trimmed. This is a hard
// compatibility requirement, not cosmetics.
func FormatPayload(lines []string, width int) string {
	var b strings.Builder
	count := 0
	for _, line := range lines {
		for _, r := range line {
			b.WriteRune(r)
			count++
			if count%width == 0 {
				b.WriteByte(' ')
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}
