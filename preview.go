package batchrename

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderPreview writes plan as an "original -> new" table followed by the
// number of files that would be renamed. Columns are padded by display
// width so names with wide characters stay aligned.
func RenderPreview(w io.Writer, plan *RenamePlan, width int) error {
	if width < 1 {
		width = DefaultPreviewWidth
	}

	renderer := lipgloss.NewRenderer(w)
	title := renderer.NewStyle().Bold(true)
	arrow := renderer.NewStyle().Faint(true).Render("->")
	ruleWidth := width*2 + 4

	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString(title.Render("Rename preview") + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString(padRight("Original", width) + " " + arrow + " " + padRight("New", width) + "\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	var total int64
	for _, pair := range plan.Pairs {
		total += pair.Source.Size
		b.WriteString(padRight(pair.Source.Name, width) + " " + arrow + " " + pair.NewName + "\n")
	}

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString(fmt.Sprintf("%d files (%s) will be renamed\n", plan.Len(), humanize.Bytes(uint64(total))))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
