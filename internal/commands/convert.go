package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/convert"
	"github.com/gerunddev/chordbridge/internal/styles"
)

// optionFlags holds the converter toggles shared by convert and diff
type optionFlags struct {
	fixChords    bool
	escapeSharps bool
}

func (o *optionFlags) register(flags *flag.FlagSet) {
	flags.BoolVar(&o.fixChords, "fix-chords", false, "repair shorthand chord names (Esus → Esus4)")
	flags.BoolVar(&o.escapeSharps, "escape-sharps", false, "escape '#' in prose lines")
}

// options returns the converter options, taking config values for any
// toggle not given on the command line
func (o *optionFlags) options(flags *flag.FlagSet, cfg *config.Config) convert.Options {
	opts := cfg.ConvertOptions()
	if flags.Changed("fix-chords") {
		opts.FixChordNames = o.fixChords
	}
	if flags.Changed("escape-sharps") {
		opts.EscapeSharps = o.escapeSharps
	}
	return opts
}

// Convert converts one song file: convert <input-file> <output-file>
func Convert(args []string, stdout io.Writer) error {
	var opts optionFlags
	flags := flag.NewFlagSet("convert", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts.register(flags)

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if flags.NArg() < 2 {
		return fmt.Errorf("%w: usage: chordbridge convert <input-file> <output-file>", ErrMissingArgs)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	inputFile := flags.Arg(0)
	outputFile := flags.Arg(1)

	converted, err := convertFile(inputFile, opts.options(flags, cfg))
	if err != nil {
		return err
	}

	if err := writeOutput(outputFile, converted); err != nil {
		return err
	}

	fmt.Fprintln(stdout, styles.SuccessStyle.Render("✓ Conversion complete! Output written to "+outputFile))
	return nil
}

// convertFile reads a song and converts it
func convertFile(path string, opts convert.Options) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	return convert.New(opts).Convert(string(raw)), nil
}

// writeOutput writes converted markup, creating the output directory
func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
