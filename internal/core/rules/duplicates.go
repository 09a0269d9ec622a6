package rules

import (
	"slices"
	"strings"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// duplicateKeys are checked independently, in this order.
var duplicateKeys = [][]string{
	{colMailingAddress, colMailingZip},
	{colFolio, colAddress, colZip},
}

func init() {
	core.Register(core.RuleDefinition{
		Name:        core.RuleDuplicates,
		Label:       "Duplicates",
		Code:        "RC003",
		Description: "Fails when rows repeat on (MAILING ADDRESS, MAILING ZIP) or (FOLIO, ADDRESS, ZIP).",
		Check:       checkDuplicates,
	})
}

func checkDuplicates(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	var findings []core.Finding
	for _, key := range duplicateKeys {
		if len(ds.MissingColumns(key...)) > 0 {
			continue
		}
		if f, ok := findDuplicates(ds, key); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// findDuplicates returns every row whose key tuple occurs more than once,
// sorted by the key. Cells match on their loaded text and missing cells
// group with each other.
func findDuplicates(ds *dataset.Dataset, key []string) (core.Finding, bool) {
	cols := columns(ds, key...)

	groups := make(map[string][]int)
	for row := range ds.RowCount() {
		k := groupKey(cols, row)
		groups[k] = append(groups[k], row)
	}

	var rows []int
	for row := range ds.RowCount() {
		if len(groups[groupKey(cols, row)]) > 1 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return core.Finding{}, false
	}

	slices.SortStableFunc(rows, func(a, b int) int {
		for _, values := range cols {
			if c := values[a].Compare(values[b]); c != 0 {
				return c
			}
		}
		return 0
	})

	detail := make([]core.DetailRow, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]string, len(key))
		for i, name := range key {
			values[name] = cols[i][row].String()
		}
		detail = append(detail, core.DetailRow{Line: ds.Line(row), Values: values})
	}

	f := fail("Duplicates found based on "+strings.Join(key, ", "), "", "")
	f.Columns = slices.Clone(key)
	f.DetailRows = detail
	return f, true
}

// groupKey joins the loaded text of the key cells, so "02134" and 2134 are
// different keys.
func groupKey(cols [][]dataset.Value, row int) string {
	var b strings.Builder
	for i, values := range cols {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if v := values[row]; v.IsMissing() {
			b.WriteByte(0)
		} else {
			b.WriteString("s:")
			b.WriteString(v.Text())
		}
	}
	return b.String()
}
