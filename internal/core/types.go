// Package core provides the rule-validation engine for fulfillment audits.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category label is not one of Sms,
// Mail or Calling.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a campaign type. The set is closed: adding one means adding a
// case to every switch over Category (see PolicyFor).
type Category int

const (
	CategorySms Category = iota + 1
	CategoryMail
	CategoryCalling
)

// Categories lists every category in processing order.
var Categories = []Category{CategorySms, CategoryMail, CategoryCalling}

// String returns the label used to match file names ("Sms", "Mail", "Calling").
func (c Category) String() string {
	switch c {
	case CategorySms:
		return "Sms"
	case CategoryMail:
		return "Mail"
	case CategoryCalling:
		return "Calling"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySms, CategoryMail, CategoryCalling:
		return true
	}
	return false
}

// ParseCategory parses a category label, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of Sms, Mail, Calling)", ErrUnknownCategory, s)
}

// Severity is the verdict carried by a Finding.
type Severity string

const (
	// SeverityPass is only emitted by the required-columns rule, which
	// reports every column it checks.
	SeverityPass Severity = "pass"
	// SeverityFail marks a data-quality failure.
	SeverityFail Severity = "fail"
	// SeverityInfo marks reporting output and recovered errors; it never
	// fails a file.
	SeverityInfo Severity = "info"
)

// DetailRow is a snapshot of one offending row.
type DetailRow struct {
	Line   int               `json:"line"` // 1-based spreadsheet line, header is line 1
	Values map[string]string `json:"values"`
}

// Finding is one rule's verdict about one file.
//
// The rendered line is "{SourceFile}: {Subject} {Verb}: {Value}", with the
// verb and value parts omitted when empty.
type Finding struct {
	SourceFile string   `json:"sourceFile"`
	Category   Category `json:"category"`
	Rule       string   `json:"rule"`
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Subject    string   `json:"subject"`
	Verb       string   `json:"verb,omitempty"`
	Value      string   `json:"value,omitempty"`

	// Columns orders DetailRows values (duplicate findings) or Counts
	// (histogram findings).
	Columns    []string    `json:"columns,omitempty"`
	DetailRows []DetailRow `json:"detailRows,omitempty"`
	Counts     []int       `json:"counts,omitempty"`
}

// Line renders the finding as a single log line.
func (f Finding) Line() string {
	var b strings.Builder
	b.WriteString(f.SourceFile)
	b.WriteString(": ")
	b.WriteString(f.Subject)
	if f.Verb != "" {
		b.WriteString(" ")
		b.WriteString(f.Verb)
	}
	if f.Value != "" {
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

// IsTabular reports whether the finding carries rows meant for table rendering.
func (f Finding) IsTabular() bool {
	return len(f.DetailRows) > 0 || len(f.Counts) > 0
}
