// Package report renders audit results for people and machines.
//
// The text form prints one line per finding, "{file}: {subject} {verb}: {value}",
// under a "starting category: X" header. Findings that carry rows (duplicate
// sets and the value histogram) are followed by a table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
)

// Text writes the line-oriented report.
type Text struct {
	w       io.Writer
	summary bool
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

// TextOption configures a Text reporter.
type TextOption func(*Text)

// WithoutSummary drops the per-category and overall summary lines.
func WithoutSummary() TextOption {
	return func(t *Text) { t.summary = false }
}

// NewText creates a reporter writing to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{
		w:       w,
		summary: true,
		header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cell:    lipgloss.NewStyle().Padding(0, 1),
		border:  lipgloss.NewStyle(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Report writes every category followed by the overall summary.
func (t *Text) Report(r *core.Report) error {
	for _, c := range r.Categories {
		if err := t.Category(c); err != nil {
			return err
		}
	}
	if !t.summary {
		return nil
	}
	_, err := fmt.Fprintf(t.w, "audit %s: %s\n", r.RunID, SummaryLine(r.Summary))
	return err
}

// Category writes one category's findings in file order.
func (t *Text) Category(c core.CategoryReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "starting category: %s\n", c.Category)
	if c.Error != "" {
		fmt.Fprintf(&b, "%s: %s\n", c.Category, c.Error)
	}

	for _, f := range c.Files {
		t.file(&b, f.Findings)
	}

	if t.summary {
		fmt.Fprintf(&b, "%s: %s\n", c.Category, SummaryLine(c.Summary))
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) file(b *strings.Builder, findings []core.Finding) {
	for i := 0; i < len(findings); i++ {
		f := findings[i]

		switch {
		case len(f.DetailRows) > 0:
			b.WriteString(f.Line())
			b.WriteByte('\n')
			b.WriteString(t.detailTable(f))
			b.WriteByte('\n')

		case len(f.Counts) > 0:
			// Consecutive histogram rows from one rule form a single table.
			j := i + 1
			for j < len(findings) && findings[j].Rule == f.Rule && len(findings[j].Counts) > 0 {
				j++
			}
			fmt.Fprintf(b, "%s: %s\n", f.SourceFile, RuleLabel(f.Rule))
			b.WriteString(t.countsTable(findings[i:j]))
			b.WriteByte('\n')
			i = j - 1

		default:
			b.WriteString(f.Line())
			b.WriteByte('\n')
		}
	}
}

func (t *Text) detailTable(f core.Finding) string {
	headers := append([]string{"LINE"}, f.Columns...)
	rows := make([][]string, len(f.DetailRows))
	for i, r := range f.DetailRows {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(r.Line))
		for _, col := range f.Columns {
			row = append(row, r.Values[col])
		}
		rows[i] = row
	}
	return t.table(headers, rows)
}

func (t *Text) countsTable(findings []core.Finding) string {
	headers := append([]string{""}, findings[0].Columns...)
	rows := make([][]string, len(findings))
	for i, f := range findings {
		row := make([]string, 0, len(headers))
		row = append(row, f.Subject)
		for _, n := range f.Counts {
			row = append(row, strconv.Itoa(n))
		}
		rows[i] = row
	}
	return t.table(headers, rows)
}

func (t *Text) table(headers []string, rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.header
			}
			return t.cell
		})
	return tbl.String()
}

// RuleLabel returns the display label of a registered rule, or name.
func RuleLabel(name string) string {
	if def, ok := core.Get(name); ok && def.Label != "" {
		return def.Label
	}
	return name
}

// SummaryLine renders a Summary as one line of counts.
func SummaryLine(s core.Summary) string {
	line := fmt.Sprintf("%d files (%d loaded, %d load errors), %d pass, %d fail, %d info",
		s.Files, s.Loaded, s.LoadErrors, s.Pass, s.Fail, s.Info)
	if len(s.FailingFiles) > 0 {
		line += "; failing: " + strings.Join(s.FailingFiles, ", ")
	}
	return line
}
