package script

import "strings"

// SanitizeIdentifier turns an arbitrary name into a usable identifier: characters
// outside [A-Za-z0-9_] are dropped, leading characters that are not a letter or
// underscore are dropped, and runs of underscores collapse to one. The result may be
// empty.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	leading := true
	prevUnderscore := false
	for _, r := range name {
		if !isIdentChar(r) {
			continue
		}
		if leading && !isIdentStart(r) {
			continue
		}
		leading = false
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
