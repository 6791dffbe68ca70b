package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxDiffBytes = 10 << 20

// Generator produces unified diffs for file edit results.
type Generator struct {
	colorEnabled bool
}

// NewGenerator creates a diff generator. colorEnabled adds ANSI colors for
// terminal display; keep it off when the diff goes back to the model.
func NewGenerator(colorEnabled bool) *Generator {
	return &Generator{colorEnabled: colorEnabled}
}

// Result contains the generated diff and statistics.
type Result struct {
	UnifiedDiff  string
	AddedLines   int
	DeletedLines int
	IsBinary     bool
}

// GenerateUnified creates a unified diff between old and new content.
func (g *Generator) GenerateUnified(oldContent, newContent, filename string) *Result {
	if oldContent == newContent {
		return &Result{}
	}
	if !utf8.ValidString(oldContent) || !utf8.ValidString(newContent) {
		return &Result{
			UnifiedDiff: fmt.Sprintf("Binary file %s has changed", filename),
			IsBinary:    true,
		}
	}
	if len(oldContent) > maxDiffBytes || len(newContent) > maxDiffBytes {
		return &Result{
			UnifiedDiff: fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ Large file, diff skipped @@", filename, filename),
		}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	patches := dmp.PatchMake(oldContent, diffs)
	patchText := dmp.PatchToText(patches)

	added, deleted := countChanges(diffs)
	return &Result{
		UnifiedDiff:  g.format(patchText, filename),
		AddedLines:   added,
		DeletedLines: deleted,
	}
}

// format prepends file headers and applies per-line coloring.
func (g *Generator) format(patchText, filename string) string {
	var out strings.Builder
	out.WriteString(g.colorize("--- a/"+filename+"\n", color.FgRed))
	out.WriteString(g.colorize("+++ b/"+filename+"\n", color.FgGreen))

	for _, line := range strings.Split(patchText, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			out.WriteString(g.colorize(line+"\n", color.FgCyan))
		case strings.HasPrefix(line, "+"):
			out.WriteString(g.colorize(line+"\n", color.FgGreen))
		case strings.HasPrefix(line, "-"):
			out.WriteString(g.colorize(line+"\n", color.FgRed))
		case line != "":
			out.WriteString(line + "\n")
		}
	}
	return out.String()
}

func (g *Generator) colorize(text string, attr color.Attribute) string {
	if !g.colorEnabled {
		return text
	}
	return color.New(attr).Sprint(text)
}

func countChanges(diffs []diffmatchpatch.Diff) (added, deleted int) {
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		if lines == 0 && d.Text != "" {
			lines = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += lines
		case diffmatchpatch.DiffDelete:
			deleted += lines
		}
	}
	return added, deleted
}
