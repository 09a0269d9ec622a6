package rules

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// Column names the rules read. Lookups are case-insensitive.
const (
	colOwnerFullName  = "OWNER FULL NAME"
	colOwnerFirstName = "OWNER FIRST NAME"
	colOwnerLastName  = "OWNER LAST NAME"
	colFolio          = "FOLIO"
	colAddress        = "ADDRESS"
	colZip            = "ZIP"
	colMailingAddress = "MAILING ADDRESS"
	colMailingZip     = "MAILING ZIP"
	colScore          = "SCORE"
	colTotalValue     = "TOTAL VALUE"
	colPropertyType   = "PROPERTY TYPE"
)

// columns fetches several columns known to exist. The caller must check
// MissingColumns first.
func columns(ds *dataset.Dataset, names ...string) [][]dataset.Value {
	out := make([][]dataset.Value, len(names))
	for i, n := range names {
		values, err := ds.ColumnValues(n)
		if err != nil {
			panic(err)
		}
		out[i] = values
	}
	return out
}

// anyValue reports whether fn holds for at least one cell of the column.
// An absent column reports true, since every caller treats absence as failure.
func anyValue(ds *dataset.Dataset, column string, fn func(dataset.Value) bool) bool {
	values, err := ds.ColumnValues(column)
	if err != nil {
		return true
	}
	for _, v := range values {
		if fn(v) {
			return true
		}
	}
	return false
}

func fail(subject, verb, value string) core.Finding {
	return core.Finding{Severity: core.SeverityFail, Subject: subject, Verb: verb, Value: value}
}

func info(subject, verb, value string) core.Finding {
	return core.Finding{Severity: core.SeverityInfo, Subject: subject, Verb: verb, Value: value}
}

// skipped is the Info finding reporting rules emit when their inputs are absent.
func skipped(subject string, missing []string) core.Finding {
	return info(subject, "skipped", "missing columns "+strings.Join(missing, ", "))
}

// formatDollars renders a whole-dollar amount with thousands separators.
func formatDollars(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return "$" + s
	}
	var b strings.Builder
	b.WriteByte('$')
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 1 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
