package commands

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/diff"
	"github.com/gerunddev/chordbridge/internal/styles"
)

// Diff shows what converting a song would change in its output file
func Diff(args []string, stdout io.Writer) error {
	var opts optionFlags
	flags := flag.NewFlagSet("diff", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts.register(flags)

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if flags.NArg() < 2 {
		return fmt.Errorf("%w: usage: chordbridge diff <input-file> <output-file>", ErrMissingArgs)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out, err := diff.Generate(flags.Arg(0), flags.Arg(1), opts.options(flags, cfg))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	if out == "" {
		fmt.Fprintln(stdout, styles.SuccessStyle.Render("✓ "+flags.Arg(1)+" is up to date"))
		return nil
	}

	fmt.Fprint(stdout, out)
	return nil
}
