package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/state"
	"github.com/gerunddev/chordbridge/internal/styles"
)

const statusLogLines = 200

// Status prints the tracked songs and the most recent batch run
func Status(stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	fmt.Fprintln(stdout, styles.TitleStyle.Render("ChordBridge Status"))
	fmt.Fprintln(stdout)

	_, last := ParseLogFile(cfg.LogFile, statusLogLines)
	if last.Time.IsZero() {
		fmt.Fprintln(stdout, styles.DimStyle.Render("No batch runs recorded in "+cfg.LogFile))
	} else {
		fmt.Fprintf(stdout, "Last batch: %s (%s ago), %d converted\n",
			last.Time.Format(time.DateTime),
			time.Since(last.Time).Round(time.Second),
			last.Converted)
		if last.RunID != "" {
			fmt.Fprintln(stdout, styles.DimStyle.Render("  run "+last.RunID))
		}
	}
	fmt.Fprintln(stdout)

	paths := st.Paths()
	if len(paths) == 0 {
		fmt.Fprintln(stdout, styles.DimStyle.Render("No songs tracked yet"))
		return nil
	}

	fmt.Fprintf(stdout, "Tracked songs (%d):\n", len(paths))
	for _, path := range paths {
		entry, _ := st.Get(path)
		marker := styles.SuccessStyle.Render("✓")
		if _, err := os.Stat(path); err != nil {
			marker = styles.WarningStyle.Render("!")
		} else if changed, err := st.HasChanged(path); err == nil && changed {
			marker = styles.WarningStyle.Render("~")
		}
		fmt.Fprintf(stdout, "  %s %s → %s %s\n", marker, styles.PathStyle.Render(path), entry.Output,
			styles.DimStyle.Render("("+st.GetMTime(path).Format(time.DateTime)+")"))
	}
	return nil
}
