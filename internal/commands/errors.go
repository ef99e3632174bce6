package commands

import (
	"errors"
	"os"

	"github.com/gerunddev/chordbridge/internal/config"
)

// Sentinel errors for command handling
var (
	ErrMissingArgs     = errors.New("missing required arguments")
	ErrInvalidArgs     = errors.New("invalid arguments")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInputNotFound   = errors.New("input file not found")
	ErrReadInput       = errors.New("failed to read input")
	ErrWriteOutput     = errors.New("failed to write output")
	ErrBatchIncomplete = errors.New("some songs could not be converted")
)

// Exit codes for the chordbridge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid arguments or config
	ExitIO      = 3 // File not found, permission denied
)

// ExitCode returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrInputNotFound) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, ErrMissingArgs) ||
		errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) {
		return ExitUsage
	}

	return ExitGeneral
}
