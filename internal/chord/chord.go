package chord

import (
	"regexp"
	"unicode/utf8"
)

// Pattern is the chord-token grammar shared by line classification and
// token extraction. Both regexes below are built from it.
const Pattern = `(?:` +
	`N\.C\.` + // no chord
	`|` +
	`[A-G]` + // root
	`(?:#|b)?` + // accidental
	`(?:maj|min|m|M|dim|aug|sus|add)?` + // quality
	`[0-9]*` + // extension
	`(?:b5|#5|b9|#9|#11|b13)?` + // alteration
	`(?:/[A-G](?:#|b)?)?` + // slash bass
	`)`

// space matches the same characters as unicode.IsSpace, which is what the
// converter trims lines with.
const space = `[\s\v\x{0085}\p{Z}]`

var (
	lineRegex  = regexp.MustCompile(`^` + space + `*` + Pattern + `(?:` + space + `+` + Pattern + `)*` + space + `*$`)
	tokenRegex = regexp.MustCompile(Pattern)
)

// Token is a chord found in a chord line
type Token struct {
	Name   string
	// Column is the rune offset in the chord line. Characters outside the
	// BMP, such as emoji, count as one column, not as a UTF-16 pair.
	Column int
}

// IsChordLine reports whether line consists only of chord tokens separated
// by whitespace
func IsChordLine(line string) bool {
	return lineRegex.MatchString(line)
}

// Find returns every chord token in line, left to right and non-overlapping
func Find(line string) []Token {
	locs := tokenRegex.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{
			Name:   line[loc[0]:loc[1]],
			Column: utf8.RuneCountInString(line[:loc[0]]),
		})
	}
	return tokens
}

// ReplaceAll rewrites every chord token in line with fn, leaving the text
// between tokens untouched
func ReplaceAll(line string, fn func(string) string) string {
	return tokenRegex.ReplaceAllStringFunc(line, fn)
}
