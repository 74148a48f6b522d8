package textutil

import "strings"

// SanitizeSegment turns a human dataset label into a directory-name segment:
// lowercase, with runs of whitespace or unsafe characters collapsed to a
// single hyphen. Underscores and dots survive since labels often come from
// file names. Returns "" when nothing safe remains.
func SanitizeSegment(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = pendingSep || b.Len() > 0
		}
	}
	return strings.Trim(b.String(), "-_.")
}
