// Package templates renders the report server's HTML pages as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/report"
)

const stylesheet = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:.5rem 0 1rem}
th,td{border:1px solid #ccc;padding:.2rem .5rem;text-align:left}
th{background:#f3f3f3}
.fail{color:#b00020}.pass{color:#1b5e20}.info{color:#555}
.alert{border:1px solid #b00020;padding:1rem;background:#fdecea}
.summary{font-weight:600}`

// html accumulates the first write error so page bodies read linearly.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// tag writes <name class="class">escaped text</name>.
func (h *html) tag(name, class, s string) {
	if class != "" {
		h.raw("<" + name + ` class="` + templ.EscapeString(class) + `">`)
	} else {
		h.raw("<" + name + ">")
	}
	h.text(s)
	h.raw("</" + name + ">")
}

func (h *html) table(header []string, rows [][]string) {
	h.raw("<table><thead><tr>")
	for _, col := range header {
		h.tag("th", "", col)
	}
	h.raw("</tr></thead><tbody>")
	for _, row := range rows {
		h.raw("<tr>")
		for _, cell := range row {
			h.tag("td", "", cell)
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}

func (h *html) open(title string) {
	h.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
	h.text(title)
	h.raw("</title><style>" + stylesheet + "</style></head><body>")
}

func (h *html) close() {
	h.raw("</body></html>")
}

// ReportPage renders a whole audit report.
func ReportPage(r *core.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.open("Fulfillment audit")

		h.tag("h1", "", "Fulfillment audit")
		h.tag("p", "", fmt.Sprintf("Run %s started %s, took %s",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.Duration.Round(time.Millisecond)))
		h.tag("p", "summary", report.SummaryLine(r.Summary))

		for _, c := range r.Categories {
			category(h, c)
		}

		h.close()
		return h.err
	})
}

// ErrorPage renders a user-facing error with its support code.
func ErrorPage(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.open("Audit error")
		h.raw(`<div class="alert" role="alert">`)
		h.tag("strong", "", message)
		if action != "" {
			h.tag("p", "", action)
		}
		h.tag("p", "info", "Code: "+code)
		h.raw("</div>")
		h.close()
		return h.err
	})
}

func category(h *html, c core.CategoryReport) {
	h.raw(`<section id="` + templ.EscapeString(strings.ToLower(c.Category.String())) + `">`)
	h.tag("h2", "", c.Category.String())
	h.tag("p", "", fmt.Sprintf("Goal %d, root %s, rules %s",
		c.Policy.Goal, c.Root, strings.Join(c.Policy.Rules, ", ")))

	if c.Error != "" {
		h.tag("p", "fail", c.Error)
	}
	if len(c.Files) == 0 {
		h.tag("p", "info", "No files found.")
	}

	for _, f := range c.Files {
		file(h, f)
	}

	h.tag("p", "summary", report.SummaryLine(c.Summary))
	h.raw("</section>")
}

func file(h *html, f core.FileReport) {
	h.raw("<article>")
	title := f.Name
	if f.Sheet != "" {
		title += " [" + f.Sheet + "]"
	}
	h.tag("h3", "", title)
	if f.LoadError == "" {
		h.tag("p", "info", strconv.Itoa(f.Rows)+" rows")
	}

	if len(f.Findings) == 0 {
		h.tag("p", "pass", "No findings.")
	}

	findings := f.Findings
	for i := 0; i < len(findings); i++ {
		fd := findings[i]
		switch {
		case len(fd.DetailRows) > 0:
			h.tag("p", string(fd.Severity), fd.Line())
			h.table(append([]string{"LINE"}, fd.Columns...), detailRows(fd))

		case len(fd.Counts) > 0:
			j := i
			for j < len(findings) && findings[j].Rule == fd.Rule && len(findings[j].Counts) > 0 {
				j++
			}
			h.tag("p", string(fd.Severity), report.RuleLabel(fd.Rule))
			h.table(append([]string{""}, fd.Columns...), countRows(findings[i:j]))
			i = j - 1

		default:
			h.tag("p", string(fd.Severity), fd.Line())
		}
	}
	h.raw("</article>")
}

func detailRows(fd core.Finding) [][]string {
	rows := make([][]string, len(fd.DetailRows))
	for i, dr := range fd.DetailRows {
		row := make([]string, 0, len(fd.Columns)+1)
		row = append(row, strconv.Itoa(dr.Line))
		for _, col := range fd.Columns {
			row = append(row, dr.Values[col])
		}
		rows[i] = row
	}
	return rows
}

func countRows(group []core.Finding) [][]string {
	rows := make([][]string, len(group))
	for i, fd := range group {
		row := make([]string, 0, len(fd.Counts)+1)
		row = append(row, fd.Subject)
		for _, n := range fd.Counts {
			row = append(row, strconv.Itoa(n))
		}
		rows[i] = row
	}
	return rows
}
