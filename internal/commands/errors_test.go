package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/gerunddev/chordbridge/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"missing args", ErrMissingArgs, ExitUsage},
		{"wrapped invalid args", fmt.Errorf("%w: --bogus", ErrInvalidArgs), ExitUsage},
		{"unknown command", fmt.Errorf("%w: frobnicate", ErrUnknownCommand), ExitUsage},
		{"config parse", fmt.Errorf("%w: bad yaml", config.ErrConfigParse), ExitUsage},
		{"invalid config", fmt.Errorf("%w: bad ext", config.ErrInvalidConfig), ExitUsage},
		{"input not found", fmt.Errorf("%w: a.txt", ErrInputNotFound), ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"not exist", fmt.Errorf("scan: %w", os.ErrNotExist), ExitIO},
		{"permission", fmt.Errorf("open: %w", os.ErrPermission), ExitIO},
		{"batch incomplete", ErrBatchIncomplete, ExitGeneral},
		{"cancelled", context.Canceled, ExitGeneral},
		{"other", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
