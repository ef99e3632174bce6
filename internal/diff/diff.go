package diff

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/chordbridge/internal/convert"
)

// Unified converts the song at inputPath and returns a unified diff from the
// current contents of outputPath to the fresh conversion.
// A missing output file diffs against empty content. The result is empty
// when the output is already up to date.
func Unified(inputPath, outputPath string, opts convert.Options) (string, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read song: %w", err)
	}

	current, err := os.ReadFile(outputPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read output: %w", err)
	}

	fresh := convert.New(opts).Convert(string(raw))
	if string(current) == fresh {
		return "", nil
	}

	name := filepath.Base(outputPath)
	edits := myers.ComputeEdits(span.URIFromPath(name), string(current), fresh)
	return fmt.Sprint(gotextdiff.ToUnified(name, name+" (converted)", string(current), edits)), nil
}

// Generate returns the diff from Unified rendered for the terminal
func Generate(inputPath, outputPath string, opts convert.Options) (string, error) {
	unified, err := Unified(inputPath, outputPath, opts)
	if err != nil || unified == "" {
		return unified, err
	}

	// Wrap in diff code fence for proper syntax highlighting (+ in green, - in red)
	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		// Fallback to plain diff if glamour fails
		return diffMarkdown, nil
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown, nil
	}

	return rendered, nil
}
