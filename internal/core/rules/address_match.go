package rules

import (
	"fmt"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// addressMatchThreshold is the share of rows above which the mailing address
// is assumed to be a copy of the property address.
const addressMatchThreshold = 0.90

func init() {
	core.Register(core.RuleDefinition{
		Name:        core.RuleAddressMatch,
		Label:       "Address match",
		Code:        "RC007",
		Description: "Alerts when the mailing address equals the property address for over 90% of rows.",
		Reporting:   true,
		Check:       checkAddressMatch,
	})
}

func checkAddressMatch(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	const subject = "Address match"

	if missing := ds.MissingColumns(colAddress, colZip, colMailingAddress, colMailingZip); len(missing) > 0 {
		return []core.Finding{skipped(subject, missing)}
	}
	if ds.RowCount() == 0 {
		return nil
	}

	cols := columns(ds, colAddress, colZip, colMailingAddress, colMailingZip)
	addr, zip, mailAddr, mailZip := cols[0], cols[1], cols[2], cols[3]

	// ZIPs are compared as loaded text so "02134" and "2134" differ.
	matched := 0
	for row := range ds.RowCount() {
		if sameText(addr[row], mailAddr[row]) && sameText(zip[row], mailZip[row]) {
			matched++
		}
	}

	fraction := float64(matched) / float64(ds.RowCount())
	if fraction <= addressMatchThreshold {
		return nil
	}
	return []core.Finding{info(subject, "Alert", fmt.Sprintf(
		"mailing address duplicates property address for %.1f%% of rows (threshold %.0f%%)",
		fraction*100, addressMatchThreshold*100,
	))}
}

func sameText(a, b dataset.Value) bool {
	return !a.IsMissing() && !b.IsMissing() && a.Text() == b.Text()
}
