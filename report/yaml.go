package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/viant/includeguardian/cost"
)

// YAMLWriter renders a Result as a colourised YAML document. Colour is
// auto-disabled when the destination stream is not a terminal, so piping
// a report into a file or another tool never embeds escape codes.
type YAMLWriter struct {
	sectionStyle lipgloss.Style
	savingStyle  lipgloss.Style
	colour       bool
}

// NewYAMLWriter returns a writer styled for w. Pass the *os.File you
// intend to write to (or any io.Writer — colour defaults off for
// anything that isn't an *os.File backed by a terminal).
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &YAMLWriter{
		sectionStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7")),
		savingStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		colour:       colour,
	}
}

// Write renders result to w as YAML, prefixing it with a colourised
// one-line summary of the total cost.
func (yw *YAMLWriter) Write(w io.Writer, result Result) error {
	summary := "total_cost: " + formatCost(result.TotalCost.TrueCost)
	if yw.colour {
		summary = yw.sectionStyle.Render("total_cost: ") + yw.savingStyle.Render(formatCost(result.TotalCost.TrueCost))
	}
	if _, err := io.WriteString(w, summary+"\n---\n"); err != nil {
		return errors.Wrap(err, "report: writing summary line")
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(result); err != nil {
		return errors.Wrap(err, "report: encoding result")
	}
	return nil
}

func formatCost(c cost.Cost) string {
	return c.String()
}
