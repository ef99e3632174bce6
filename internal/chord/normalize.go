package chord

import "regexp"

// maj7Regex matches a root with optional accidental and minor "m" spelled
// with the "ma7" shorthand
var maj7Regex = regexp.MustCompile(`(?i)^([A-G](?:#|b)?m?)ma7$`)

// fixes maps common shorthand spellings to their full names
var fixes = map[string]string{
	"Asus": "Asus4",
	"Esus": "Esus4",
	"Dsus": "Dsus4",
	"A2":   "Asus2",
	"E2":   "Esus2",
	"D2":   "Dsus2",
}

// Normalize repairs shorthand chord names
// Ama7 → Amaj7, Esus → Esus4, D2 → Dsus2
// Anything else is returned unchanged.
func Normalize(name string) string {
	if m := maj7Regex.FindStringSubmatch(name); m != nil {
		name = m[1] + "maj7"
	}

	if fixed, ok := fixes[name]; ok {
		return fixed
	}
	return name
}
