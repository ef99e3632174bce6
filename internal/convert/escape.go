package convert

import "strings"

// EscapeSharps escapes '#' in plain prose lines so ChordPro parsers do not
// read the rest of the line as a comment.
// Directive lines ({...}), comment lines (#...) and lines holding bracketed
// chords are left alone, since sharps inside [C#7b5] are chord syntax.
func EscapeSharps(markup string) string {
	if markup == "" {
		return markup
	}

	lines := strings.Split(markup, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(line, "[") {
			continue
		}
		lines[i] = strings.ReplaceAll(line, "#", `\#`)
	}
	return strings.Join(lines, "\n")
}
