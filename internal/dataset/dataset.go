// Package dataset provides an in-memory, column-oriented view of one
// fulfillment spreadsheet.
//
// A Dataset is built once per file by Load (or New in tests) and is read-only
// afterwards. Column lookups are case-insensitive: names are trimmed and
// upper-cased before comparison, so "Owner Full Name" and "OWNER FULL NAME"
// refer to the same column.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound is returned when a column does not exist in the sheet
// header. It is distinct from a present column whose cell is missing.
var ErrColumnNotFound = errors.New("column not found")

// Kind classifies a cell value.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a single typed cell.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Missing is the value of an empty cell.
var Missing = Value{}

// NewValue types raw cell text. Text that is empty after trimming is Missing,
// text that parses as a plain decimal number is a Number, anything else is a
// String. The trimmed text is kept verbatim so "02134" keeps its leading zero.
func NewValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing
	}
	if f, ok := ParseNumber(s); ok {
		return Value{kind: KindNumber, text: s, num: f}
	}
	return Value{kind: KindString, text: s}
}

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell was empty.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the cell's text form as loaded. Missing cells return "".
func (v Value) Text() string { return v.text }

// Number returns the numeric value and whether the cell is a Number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Amount returns a monetary reading of the cell. Numbers are returned as-is;
// strings are parsed leniently ("$250,000", "(1,200)").
func (v Value) Amount() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseAmount(v.text)
	default:
		return 0, false
	}
}

// Equal compares two cells the way a spreadsheet user would: numbers by
// value, strings by exact text. Missing is never equal to anything,
// including another missing cell.
func (v Value) Equal(o Value) bool {
	if v.kind == KindMissing || o.kind == KindMissing {
		return false
	}
	if v.kind == KindNumber && o.kind == KindNumber {
		return v.num == o.num
	}
	return v.text == o.text
}

// Compare orders two cells: numbers numerically, otherwise by text, with
// missing cells sorting last. Returns -1, 0 or 1.
func (v Value) Compare(o Value) int {
	switch {
	case v.kind == KindMissing && o.kind == KindMissing:
		return 0
	case v.kind == KindMissing:
		return 1
	case o.kind == KindMissing:
		return -1
	case v.kind == KindNumber && o.kind == KindNumber:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	}
	return strings.Compare(v.text, o.text)
}

// String implements fmt.Stringer. Cells render as loaded; missing cells
// render as "NaN", matching what analysts see in exported reports.
func (v Value) String() string {
	if v.kind == KindMissing {
		return "NaN"
	}
	return v.text
}

// Dataset is one sheet held column-wise in memory.
type Dataset struct {
	name    string
	sheet   string
	columns []string
	index   map[string]int
	data    [][]Value
	lines   []int
	rows    int
}

// New builds a Dataset from a header row and data records, record i being
// spreadsheet line i+2. Short records are padded with missing cells, cells
// beyond the header are dropped and fully empty records are skipped, so every
// column holds exactly RowCount values.
func New(name string, header []string, records [][]string) *Dataset {
	return build(name, header, records, func(i int) int { return i + 2 })
}

// build is New with the source line of each record supplied by lineOf.
func build(name string, header []string, records [][]string, lineOf func(i int) int) *Dataset {
	ds := &Dataset{
		name:    name,
		columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
		data:    make([][]Value, len(header)),
	}

	for i, h := range header {
		col := strings.TrimSpace(h)
		ds.columns[i] = col
		key := NormalizeColumn(col)
		if _, dup := ds.index[key]; !dup {
			ds.index[key] = i
		}
		ds.data[i] = make([]Value, 0, len(records))
	}

	ds.lines = make([]int, 0, len(records))
	for r, rec := range records {
		if isEmptyRecord(rec) {
			continue
		}
		ds.lines = append(ds.lines, lineOf(r))
		for i := range ds.columns {
			v := Missing
			if i < len(rec) {
				v = NewValue(rec[i])
			}
			ds.data[i] = append(ds.data[i], v)
		}
		ds.rows++
	}

	return ds
}

// NormalizeColumn returns the comparison key for a column name.
func NormalizeColumn(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Name is the identifying label of the source file (its basename).
func (d *Dataset) Name() string { return d.name }

// Sheet is the worksheet the data was read from, empty for CSV sources.
func (d *Dataset) Sheet() string { return d.sheet }

// Columns returns the header names in sheet order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// RowCount returns the number of data rows (header excluded).
func (d *Dataset) RowCount() int { return d.rows }

// HasColumn reports whether the header contains name, ignoring case.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[NormalizeColumn(name)]
	return ok
}

// MissingColumns returns the subset of names not present in the header,
// in the order given.
func (d *Dataset) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !d.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// ColumnValues returns the ordered cells of a column.
// The returned slice must not be modified.
func (d *Dataset) ColumnValues(name string) ([]Value, error) {
	pos, ok := d.index[NormalizeColumn(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.data[pos], nil
}

// Cell returns a single cell. Row is zero-based over data rows.
func (d *Dataset) Cell(row int, name string) (Value, error) {
	values, err := d.ColumnValues(name)
	if err != nil {
		return Missing, err
	}
	if row < 0 || row >= len(values) {
		return Missing, fmt.Errorf("row %d out of range [0,%d)", row, len(values))
	}
	return values[row], nil
}

// Line returns the 1-based spreadsheet line of a zero-based data row. The
// header occupies line 1; skipped blank rows still count.
func (d *Dataset) Line(row int) int { return d.lines[row] }

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
