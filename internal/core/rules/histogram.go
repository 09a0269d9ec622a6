package rules

import (
	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// valueBoundaries are the ascending TOTAL VALUE bucket edges.
var valueBoundaries = []int{
	0, 1, 25000, 50000, 100000, 150000, 200000, 250000, 300000, 350000,
	400000, 500000, 600000, 750000, 1000000, 1500000, 2000000,
}

type valueBucket struct {
	label  string
	lo, hi float64
	counts bool // false for the label-only rows
}

// valueBuckets builds one row per boundary. Row 0 ("Unknown") and the last
// row ("$2,000,000+") are never populated; rows in between count values in
// (lo, hi]. Values at or below $1 and above the last boundary land nowhere.
func valueBuckets() []valueBucket {
	n := len(valueBoundaries)
	buckets := make([]valueBucket, n)
	buckets[0] = valueBucket{label: "Unknown"}
	for i := 1; i < n-1; i++ {
		lo, hi := valueBoundaries[i], valueBoundaries[i+1]
		buckets[i] = valueBucket{
			label:  formatDollars(lo) + " - " + formatDollars(hi),
			lo:     float64(lo),
			hi:     float64(hi),
			counts: true,
		}
	}
	buckets[n-1] = valueBucket{label: formatDollars(valueBoundaries[n-1]) + "+"}
	return buckets
}

func init() {
	core.Register(core.RuleDefinition{
		Name:        core.RuleValueHistogram,
		Label:       "Property value histogram",
		Code:        "RC008",
		Description: "Counts rows per TOTAL VALUE bucket for each PROPERTY TYPE.",
		Reporting:   true,
		Check:       checkValueHistogram,
	})
}

func checkValueHistogram(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	if missing := ds.MissingColumns(colTotalValue, colPropertyType); len(missing) > 0 {
		return []core.Finding{skipped("Property value histogram", missing)}
	}

	cols := columns(ds, colTotalValue, colPropertyType)
	values, types := cols[0], cols[1]

	// Table columns are the property types in order of first appearance.
	var names []string
	index := make(map[string]int)
	for _, t := range types {
		if t.IsMissing() {
			continue
		}
		if _, seen := index[t.Text()]; !seen {
			index[t.Text()] = len(names)
			names = append(names, t.Text())
		}
	}

	if len(names) == 0 {
		return []core.Finding{info("Property value histogram", "skipped", "no PROPERTY TYPE values")}
	}

	buckets := valueBuckets()
	counts := make([][]int, len(buckets))
	for i := range counts {
		counts[i] = make([]int, len(names))
	}

	for row := range ds.RowCount() {
		if types[row].IsMissing() {
			continue
		}
		amount, ok := values[row].Amount()
		if !ok {
			continue
		}
		col := index[types[row].Text()]
		for i, b := range buckets {
			if b.counts && amount > b.lo && amount <= b.hi {
				counts[i][col]++
				break
			}
		}
	}

	findings := make([]core.Finding, len(buckets))
	for i, b := range buckets {
		f := info(b.label, "", "")
		f.Columns = names
		f.Counts = counts[i]
		findings[i] = f
	}
	return findings
}
