package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/gerunddev/chordbridge/internal/batch"
	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/logger"
	"github.com/gerunddev/chordbridge/internal/state"
	"github.com/gerunddev/chordbridge/internal/styles"
)

// batchFlags holds flags for the batch command
type batchFlags struct {
	srcDir  string
	outDir  string
	dryRun  bool
	force   bool
	workers int
	verbose bool
}

// Batch converts every changed song in a directory tree
func Batch(ctx context.Context, args []string, stdout io.Writer) error {
	var f batchFlags
	flags := flag.NewFlagSet("batch", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVarP(&f.srcDir, "dir", "d", "", "directory of plain-text songs")
	flags.StringVarP(&f.outDir, "out", "o", "", "directory for ChordPro output")
	flags.BoolVar(&f.dryRun, "dry-run", false, "report what would be converted without writing")
	flags.BoolVar(&f.force, "force", false, "convert songs even if unchanged")
	flags.IntVarP(&f.workers, "workers", "w", 0, "number of conversion workers (0 = auto)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log to stderr as well as the log file")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if f.srcDir == "" || f.outDir == "" {
		return fmt.Errorf("%w: usage: chordbridge batch --dir <songs> --out <output>", ErrMissingArgs)
	}
	if f.workers < 0 {
		return fmt.Errorf("%w: --workers cannot be negative", ErrInvalidArgs)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	defer undo()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	l, cleanup := batchLogger(cfg.LogFile, f.verbose)
	defer cleanup()
	l.ConfigLoaded(cfg.InputExt, cfg.OutputExt, cfg.Workers)

	title := "ChordBridge Batch"
	if f.dryRun {
		title += " (DRY RUN)"
	}
	fmt.Fprintln(stdout, styles.TitleStyle.Render(title))
	fmt.Fprintf(stdout, "%s → %s\n\n", styles.PathStyle.Render(f.srcDir), styles.PathStyle.Render(f.outDir))

	b := batch.New(cfg, st)
	b.SetLogger(l)

	result, err := b.Run(ctx, batch.Options{
		SrcDir: f.srcDir,
		OutDir: f.outDir,
		DryRun: f.dryRun,
		Force:  f.force,
	})
	if result != nil && !f.dryRun {
		if saveErr := st.Save(config.StateFilePath()); saveErr != nil {
			l.StateError("save", saveErr)
		}
	}
	if err != nil {
		return err
	}

	for _, path := range result.Converted {
		fmt.Fprintln(stdout, styles.SuccessStyle.Render("✓ "+path))
	}
	for _, e := range result.Errors {
		fmt.Fprintln(stdout, styles.ErrorStyle.Render("✗ "+e.Error()))
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintln(stdout, styles.DimStyle.Render(fmt.Sprintf("  %d unchanged or excluded", len(result.Skipped))))
	}
	for _, path := range result.Forgotten {
		fmt.Fprintln(stdout, styles.WarningStyle.Render("- "+path+" (removed, no longer tracked)"))
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, result.String())

	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %d failed", ErrBatchIncomplete, len(result.Errors))
	}
	return nil
}

// batchLogger logs to the configured file, and to stderr when verbose.
// A log file that cannot be opened is not fatal.
func batchLogger(logFile string, verbose bool) (*logger.Logger, func()) {
	if !verbose {
		l, cleanup, err := logger.NewFileLogger(logFile)
		if err != nil {
			return logger.Discard(), func() {}
		}
		return l, cleanup
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.WarningStyle.Render("! Cannot open log file: "+err.Error()))
		return logger.NewWithLevel(os.Stderr, log.DebugLevel), func() {}
	}

	l := logger.NewMultiLogger(f, os.Stderr)
	l.SetLevel(log.DebugLevel)
	return l, func() { f.Close() }
}
