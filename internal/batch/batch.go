package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/convert"
	"github.com/gerunddev/chordbridge/internal/logger"
	"github.com/gerunddev/chordbridge/internal/state"
)

// Batcher converts every song in a directory tree
type Batcher struct {
	config    *config.Config
	state     *state.State
	converter *convert.Converter
	log       *logger.Logger
}

// New creates a batcher using the converter options from cfg
func New(cfg *config.Config, st *state.State) *Batcher {
	return &Batcher{
		config:    cfg,
		state:     st,
		converter: convert.New(cfg.ConvertOptions()),
		log:       logger.Discard(),
	}
}

// SetLogger sets the logger used for run and file events
func (b *Batcher) SetLogger(l *logger.Logger) {
	b.log = l
}

// Options selects what a run reads, writes and skips
type Options struct {
	SrcDir string
	OutDir string
	DryRun bool // convert but write neither files nor state
	Force  bool // convert unchanged songs too
}

// FileError pairs a song with the error that stopped its conversion
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result represents the outcome of a batch run
type Result struct {
	RunID     string
	DryRun    bool
	Converted []string // source paths
	Skipped   []string
	Errors    []error
	Forgotten []string // tracked songs no longer present in the source dir
	StartTime time.Time
	EndTime   time.Time
}

type outcome struct {
	path    string
	dest    string
	skipped bool
	err     error
}

// Run converts every changed song under opts.SrcDir into opts.OutDir.
// Per-file failures are collected in the result; the returned error is
// reserved for failures that stop the whole run, including cancellation.
func (b *Batcher) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		DryRun:    opts.DryRun,
		StartTime: time.Now(),
	}

	// State is keyed by path, so the same folder must always be spelled the same way
	srcDir, err := filepath.Abs(opts.SrcDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.SrcDir, err)
	}
	outDir, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.OutDir, err)
	}
	opts.SrcDir, opts.OutDir = srcDir, outDir

	files, err := ScanDirectory(opts.SrcDir, b.config.InputExt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.SrcDir, err)
	}

	workers := PoolSize(b.config.Workers)
	b.log.BatchStarted(result.RunID, opts.SrcDir, opts.OutDir, workers)

	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcomes <- b.convertFile(path, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			if b.config.Excluded(path) {
				outcomes <- outcome{path: path, skipped: true}
				b.log.Skipped(path, "excluded")
				continue
			}
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		switch {
		case o.err != nil:
			result.Errors = append(result.Errors, &FileError{Path: o.path, Err: o.err})
			b.log.FileError(o.path, o.err)
		case o.skipped:
			result.Skipped = append(result.Skipped, o.path)
		default:
			result.Converted = append(result.Converted, o.path)
			b.log.FileConverted(o.path, o.dest)
		}
	}

	sort.Strings(result.Converted)
	sort.Strings(result.Skipped)
	if !opts.DryRun && ctx.Err() == nil {
		result.Forgotten = b.prune(opts.SrcDir, files)
	}
	result.EndTime = time.Now()

	b.log.BatchCompleted(result.RunID, len(result.Converted), len(result.Skipped),
		len(result.Errors), result.EndTime.Sub(result.StartTime))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// convertFile converts one song unless it is unchanged since the last run
func (b *Batcher) convertFile(path string, opts Options) outcome {
	o := outcome{path: path}

	dest, err := OutputPath(opts.SrcDir, opts.OutDir, path, b.config.OutputExt)
	if err != nil {
		o.err = err
		return o
	}
	o.dest = dest

	if !opts.Force {
		changed, err := b.state.HasChanged(path)
		if err != nil {
			o.err = err
			return o
		}
		if !changed {
			if _, statErr := os.Stat(dest); statErr == nil {
				o.skipped = true
				b.log.Skipped(path, "unchanged")
				return o
			}
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		o.err = fmt.Errorf("failed to read song: %w", err)
		return o
	}

	converted := b.converter.Convert(string(raw))

	if opts.DryRun {
		return o
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		o.err = fmt.Errorf("failed to create output directory: %w", err)
		return o
	}
	if err := os.WriteFile(dest, []byte(converted), 0644); err != nil {
		o.err = fmt.Errorf("failed to write output: %w", err)
		return o
	}

	if err := b.state.Update(path, dest); err != nil {
		b.log.StateError("update", err)
	}

	return o
}

// prune drops state for tracked songs under srcDir that were not found by
// the scan
func (b *Batcher) prune(srcDir string, scanned []string) []string {
	seen := make(map[string]bool, len(scanned))
	for _, path := range scanned {
		seen[path] = true
	}

	var forgotten []string
	for _, path := range b.state.Paths() {
		if seen[path] {
			continue
		}
		if rel, err := filepath.Rel(srcDir, path); err != nil || rel == ".." ||
			strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		b.state.Forget(path)
		b.log.Skipped(path, "removed from source")
		forgotten = append(forgotten, path)
	}
	return forgotten
}

// ScanDirectory returns every file under dir with the given extension,
// in lexical order
func ScanDirectory(dir string, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && filepath.Ext(path) == ext {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// OutputPath maps a song under srcDir to its place under outDir with the
// output extension
func OutputPath(srcDir, outDir, path, outExt string) (string, error) {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, srcDir)
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + outExt
	return filepath.Join(outDir, rel), nil
}

// PoolSize determines the number of conversion workers.
// Priority: explicit setting > GOMAXPROCS-based calculation.
func PoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is already adjusted for container limits by automaxprocs
	n := runtime.GOMAXPROCS(0) / 2

	// Minimum 1, maximum 8
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

// Failed returns the paths of songs that could not be converted
func (r *Result) Failed() []string {
	var paths []string
	for _, err := range r.Errors {
		var fe *FileError
		if errors.As(err, &fe) {
			paths = append(paths, fe.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// String returns a human-readable summary of the batch result
func (r *Result) String() string {
	verb := "converted"
	if r.DryRun {
		verb = "would be converted"
	}
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Batch complete: %d files %s, %d skipped, %d errors (took %v)",
		len(r.Converted),
		verb,
		len(r.Skipped),
		len(r.Errors),
		duration.Round(time.Millisecond),
	)
}
