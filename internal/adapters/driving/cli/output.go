package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/custodia-labs/critic/internal/core/domain"
)

// palette is the CLI colour set.
var palette = struct {
	Primary  lipgloss.Color
	Muted    lipgloss.Color
	Positive lipgloss.Color
	Negative lipgloss.Color
	Border   lipgloss.Color
}{
	Primary:  lipgloss.Color("#7C3AED"), // Purple
	Muted:    lipgloss.Color("#6C7086"), // Medium gray
	Positive: lipgloss.Color("#A6E3A1"), // Green
	Negative: lipgloss.Color("#F38BA8"), // Red
	Border:   lipgloss.Color("#45475A"), // Border gray
}

// output renders command results. Styling is only applied when writing
// to a terminal; pipes and test buffers get plain text.
type output struct {
	styled bool

	title    lipgloss.Style
	muted    lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	header   lipgloss.Style
}

func newOutput(w io.Writer) *output {
	o := &output{styled: isTerminal(w)}
	if !o.styled {
		return o
	}
	o.title = lipgloss.NewStyle().Bold(true).Foreground(palette.Primary)
	o.muted = lipgloss.NewStyle().Foreground(palette.Muted)
	o.positive = lipgloss.NewStyle().Bold(true).Foreground(palette.Positive)
	o.negative = lipgloss.NewStyle().Bold(true).Foreground(palette.Negative)
	o.header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return o
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Heading renders a section title with an underline in plain mode.
func (o *output) Heading(s string) string {
	if o.styled {
		return o.title.Render(s)
	}
	return s + "\n" + strings.Repeat("=", len(s))
}

// Muted renders secondary text.
func (o *output) Muted(s string) string {
	if o.styled {
		return o.muted.Render(s)
	}
	return s
}

// Sentiment renders a label in its class colour.
func (o *output) Sentiment(s domain.Sentiment) string {
	if !o.styled {
		return s.String()
	}
	if s == domain.SentimentPositive {
		return o.positive.Render(s.String())
	}
	return o.negative.Render(s.String())
}

// Table renders rows under headers.
func (o *output) Table(headers []string, rows [][]string) string {
	t := table.New().Headers(headers...).Rows(rows...)
	if !o.styled {
		return t.Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(_, _ int) lipgloss.Style {
				return lipgloss.NewStyle().Padding(0, 1)
			}).
			String()
	}
	return t.Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(palette.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return o.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}
