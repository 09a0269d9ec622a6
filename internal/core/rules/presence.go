package rules

import (
	"fmt"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// ownerSentinel is what the county export writes when it has no owner data.
const ownerSentinel = "Not Available from the County"

var ownerColumns = []string{colOwnerFullName, colOwnerFirstName, colOwnerLastName}

func init() {
	core.Register(core.RuleDefinition{
		Name:        core.RuleRowCount,
		Label:       "Row count",
		Code:        "RC001",
		Description: "Fails when the number of data rows differs from the category goal.",
		Check:       checkRowCount,
	})
	core.Register(core.RuleDefinition{
		Name:        core.RuleOwnerColumns,
		Label:       "Owner columns",
		Code:        "RC002",
		Description: "Fails each owner name column that is absent or holds the county placeholder.",
		Check:       checkOwnerColumns,
	})
	core.Register(core.RuleDefinition{
		Name:        core.RuleBlankAddress,
		Label:       "Blank address",
		Code:        "RC004",
		Description: "Fails when ADDRESS is absent or any row has no address.",
		Check:       checkBlankAddress,
	})
	core.Register(core.RuleDefinition{
		Name:        core.RuleZeroScore,
		Label:       "Zero score",
		Code:        "RC005",
		Description: "Fails when SCORE is absent or any row scores 0.",
		Check:       checkZeroScore,
	})
	core.Register(core.RuleDefinition{
		Name:        core.RuleRequiredColumns,
		Label:       "Required columns",
		Code:        "RC006",
		Description: "Reports PASSED or FAILED for every column the category requires.",
		Check:       checkRequiredColumns,
	})
}

func checkRowCount(ds *dataset.Dataset, p core.Policy) []core.Finding {
	if ds.RowCount() == p.Goal {
		return nil
	}
	return []core.Finding{fail(
		"Number of Rows == Clients Goal", "",
		fmt.Sprintf("False (rows: %d, goal: %d)", ds.RowCount(), p.Goal),
	)}
}

func checkOwnerColumns(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	var findings []core.Finding
	for _, col := range ownerColumns {
		bad := anyValue(ds, col, func(v dataset.Value) bool {
			return v.Kind() == dataset.KindString && v.Text() == ownerSentinel
		})
		if bad {
			findings = append(findings, fail(col, "Passed", "False"))
		}
	}
	return findings
}

func checkBlankAddress(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	if anyValue(ds, colAddress, dataset.Value.IsMissing) {
		return []core.Finding{fail("No empty Property Address", "", "False")}
	}
	return nil
}

func checkZeroScore(ds *dataset.Dataset, _ core.Policy) []core.Finding {
	zero := func(v dataset.Value) bool {
		n, ok := v.Number()
		return ok && n == 0
	}
	if anyValue(ds, colScore, zero) {
		return []core.Finding{fail("No properties with 0 score", "", "FAILED")}
	}
	return nil
}

func checkRequiredColumns(ds *dataset.Dataset, p core.Policy) []core.Finding {
	findings := make([]core.Finding, 0, len(p.RequiredColumns))
	for _, col := range p.RequiredColumns {
		f := core.Finding{Severity: core.SeverityPass, Subject: col, Verb: "Exists", Value: "PASSED"}
		if !ds.HasColumn(col) {
			f.Severity = core.SeverityFail
			f.Value = "FAILED"
		}
		findings = append(findings, f)
	}
	return findings
}
