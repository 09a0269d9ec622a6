package core

import (
	"fmt"
	"slices"
	"strings"
)

// commonColumns are required for every category.
var commonColumns = []string{
	"Folio", "Owner 1 Full Name", "Owner 1 First Name", "Owner 1 Last Name",
	"Property Address", "Property City", "Property State", "Property Zip", "Property County",
	"Mailing Address", "Mailing City", "Mailing State", "Mailing Zip",
	"Golden Address", "Golden City", "Golden State", "Golden Zip",
	"Action Plan", "Property Status", "Score",
	"Distress", "Avatar", "Property Type", "Link to property", "Tags",
	"Distresses",
}

// DefaultRules is the rule sequence run when no policy overrides it.
// row_count and required_columns are available but off, as are the two
// reporting-only rules.
var DefaultRules = []string{
	RuleOwnerColumns,
	RuleDuplicates,
	RuleBlankAddress,
	RuleZeroScore,
}

// Policy is the per-category configuration a Validation Run applies.
type Policy struct {
	Category        Category `json:"category"`
	Goal            int      `json:"goal"`
	RequiredColumns []string `json:"requiredColumns"`
	Rules           []string `json:"rules"`
}

// PolicyFor builds the default policy for a category.
func PolicyFor(c Category, goal int) Policy {
	var extra []string
	switch c {
	case CategorySms:
		extra = []string{"Targeted Messages", "Phone Number", "Phone Type"}
	case CategoryMail:
		extra = []string{"Targeted messages"}
	case CategoryCalling:
		extra = []string{"Owner 2 Full Name", "Property Link", "Phone Number", "Phone Type"}
	default:
		panic(fmt.Sprintf("no policy for %v", c))
	}

	cols := make([]string, 0, len(commonColumns)+len(extra))
	for _, col := range slices.Concat(commonColumns, extra) {
		cols = append(cols, strings.ToUpper(col))
	}

	return Policy{
		Category:        c,
		Goal:            goal,
		RequiredColumns: cols,
		Rules:           slices.Clone(DefaultRules),
	}
}

// WithRules returns a copy of p running names in the given order.
func (p Policy) WithRules(names []string) Policy {
	p.Rules = slices.Clone(names)
	return p
}

// Enable returns a copy of p with name appended if not already present.
func (p Policy) Enable(name string) Policy {
	if slices.Contains(p.Rules, name) {
		return p
	}
	p.Rules = append(slices.Clone(p.Rules), name)
	return p
}

// Disable returns a copy of p without name.
func (p Policy) Disable(name string) Policy {
	p.Rules = slices.DeleteFunc(slices.Clone(p.Rules), func(r string) bool {
		return r == name
	})
	return p
}
