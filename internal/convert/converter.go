package convert

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gerunddev/chordbridge/internal/chord"
)

// sectionRegex matches a section marker line such as [Verse 1]
var sectionRegex = regexp.MustCompile(`^\[.*\]$`)

// inlineChordRegex matches a chord already written inline, as in [Ama7]Hello
var inlineChordRegex = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Options toggles the optional passes. The zero value produces plain
// converter output.
type Options struct {
	FixChordNames bool // repair shorthand chord names (Esus → Esus4)
	EscapeSharps  bool // escape '#' in prose lines for ChordPro parsers
}

// Converter turns plain lyrics-and-chords text into ChordPro markup
type Converter struct {
	opts Options
}

// New creates a converter with the given options
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// ToChordPro converts raw song text with default options
func ToChordPro(raw string) string {
	return New(Options{}).Convert(raw)
}

// scanState is the per-call state of a conversion
type scanState struct {
	titleFound             bool
	artistFound            bool
	inChorus               bool
	previousLineWasSection bool
}

// Convert converts raw song text to ChordPro.
//
// The first non-blank line becomes the title and the second the subtitle
// (artist). This is positional: a song without an artist line will have its
// first lyric line taken as the artist.
//
// Chord lines directly above a lyric line are merged into it, each chord
// placed at the column it was written at. A chord line with nothing below it
// is kept as a single bracketed line.
func (c *Converter) Convert(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines)+4)
	var st scanState

	for i := 0; i < len(lines); i++ {
		line := trimEnd(lines[i])

		if line == "" {
			if !st.previousLineWasSection && len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}

		if !st.titleFound {
			out = append(out, "{title: "+line+"}")
			st.titleFound = true
			continue
		}
		if !st.artistFound {
			out = append(out, "{st: "+line+"}", "")
			st.artistFound = true
			continue
		}

		if sectionRegex.MatchString(line) {
			out = st.section(out, line[1:len(line)-1])
			continue
		}

		st.previousLineWasSection = false

		if !chord.IsChordLine(line) {
			out = append(out, c.inline(line))
			continue
		}

		next := ""
		if i+1 < len(lines) {
			next = trimEnd(lines[i+1])
		}

		if next == "" {
			out = append(out, "["+c.standalone(strings.TrimSpace(line))+"]")
			continue
		}

		tokens := chord.Find(line)
		if len(tokens) == 0 {
			continue
		}
		out = append(out, c.interleave(tokens, next))
		i++ // lyric line consumed
	}

	if st.inChorus {
		out = trimTrailingBlanks(out)
		out = append(out, "{eoc}", "")
	}
	out = trimTrailingBlanks(out)

	result := strings.Join(out, "\n")
	if c.opts.EscapeSharps {
		result = EscapeSharps(result)
	}
	return result
}

// section emits the directives for a section marker and updates the chorus
// fold
func (st *scanState) section(out []string, name string) []string {
	isChorus := strings.HasPrefix(strings.ToLower(name), "chorus")

	if st.inChorus && !isChorus {
		out = append(out, "{eoc}", "")
		st.inChorus = false
	}

	switch {
	case name == "Intro":
		out = append(out, "{c:Intro}")
	case isChorus:
		out = append(out, "{soc}", "{c:Chorus}")
		st.inChorus = true
	default:
		out = append(out, "{c:"+name+"}")
	}

	st.previousLineWasSection = true
	return out
}

// interleave inserts each chord into lyric at the column it had in the chord
// line. Every insertion shifts later columns by the bracketed chord length.
func (c *Converter) interleave(tokens []chord.Token, lyric string) string {
	runes := []rune(lyric)
	offset := 0

	for _, tok := range tokens {
		name := tok.Name
		if c.opts.FixChordNames {
			name = chord.Normalize(name)
		}
		bracketed := []rune("[" + name + "]")

		pos := tok.Column + offset
		if pos <= len(runes) {
			merged := make([]rune, 0, len(runes)+len(bracketed))
			merged = append(merged, runes[:pos]...)
			merged = append(merged, bracketed...)
			merged = append(merged, runes[pos:]...)
			runes = merged
		} else {
			runes = append(runes, bracketed...)
		}
		offset += len(bracketed)
	}

	return string(runes)
}

// standalone returns a chord line kept whole, repairing names if enabled
func (c *Converter) standalone(line string) string {
	if !c.opts.FixChordNames {
		return line
	}
	return chord.ReplaceAll(line, chord.Normalize)
}

// inline repairs chords already bracketed inside a lyric line
func (c *Converter) inline(line string) string {
	if !c.opts.FixChordNames || !strings.Contains(line, "[") {
		return line
	}
	return inlineChordRegex.ReplaceAllStringFunc(line, func(m string) string {
		return "[" + chord.Normalize(m[1:len(m)-1]) + "]"
	})
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func trimTrailingBlanks(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
