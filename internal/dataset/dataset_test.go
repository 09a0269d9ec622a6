package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset/datasettest"
)

func TestNewValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind dataset.Kind
		wantText string
		wantNum  float64
	}{
		{name: "empty", raw: "", wantKind: dataset.KindMissing},
		{name: "whitespace only", raw: "   ", wantKind: dataset.KindMissing},
		{name: "integer", raw: "25000", wantKind: dataset.KindNumber, wantText: "25000", wantNum: 25000},
		{name: "zero", raw: "0", wantKind: dataset.KindNumber, wantText: "0", wantNum: 0},
		{name: "decimal zero", raw: "0.0", wantKind: dataset.KindNumber, wantText: "0.0", wantNum: 0},
		{name: "negative decimal", raw: "-3.5", wantKind: dataset.KindNumber, wantText: "-3.5", wantNum: -3.5},
		{name: "leading zero zip keeps text", raw: "02134", wantKind: dataset.KindNumber, wantText: "02134", wantNum: 2134},
		{name: "zip plus four", raw: "33101-1234", wantKind: dataset.KindString, wantText: "33101-1234"},
		{name: "currency is text", raw: "$25,000", wantKind: dataset.KindString, wantText: "$25,000"},
		{name: "trimmed text", raw: "  123 Main St ", wantKind: dataset.KindString, wantText: "123 Main St"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := dataset.NewValue(tt.raw)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantText, v.Text())
			if tt.wantKind == dataset.KindNumber {
				n, ok := v.Number()
				require.True(t, ok)
				assert.Equal(t, tt.wantNum, n)
			}
		})
	}
}

func TestValue_EqualAndCompare(t *testing.T) {
	a := dataset.NewValue("100")
	b := dataset.NewValue("100.0")
	c := dataset.NewValue("abc")

	assert.True(t, a.Equal(b), "numbers compare by value")
	assert.False(t, a.Equal(c))
	assert.False(t, dataset.Missing.Equal(dataset.Missing), "missing never equals missing")

	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, -1, dataset.NewValue("9").Compare(dataset.NewValue("10")), "numeric order, not lexicographic")
	assert.Equal(t, -1, c.Compare(dataset.Missing), "missing sorts last")
	assert.Equal(t, 1, dataset.Missing.Compare(c))
	assert.Equal(t, "NaN", dataset.Missing.String())
}

func TestValue_Amount(t *testing.T) {
	v, ok := dataset.NewValue("$250,000").Amount()
	require.True(t, ok)
	assert.Equal(t, 250000.0, v)

	v, ok = dataset.NewValue("(1,200)").Amount()
	require.True(t, ok)
	assert.Equal(t, -1200.0, v)

	_, ok = dataset.NewValue("n/a").Amount()
	assert.False(t, ok)

	_, ok = dataset.Missing.Amount()
	assert.False(t, ok)
}

func TestDataset_CaseInsensitiveColumns(t *testing.T) {
	ds := dataset.New("client.xlsx",
		[]string{"Folio", " Mailing Address ", "SCORE"},
		[][]string{
			{"1", "1 Main St", "10"},
			{"2", "2 Main St"},
		},
	)

	assert.Equal(t, "client.xlsx", ds.Name())
	assert.Equal(t, 2, ds.RowCount())
	assert.True(t, ds.HasColumn("FOLIO"))
	assert.True(t, ds.HasColumn("mailing address"))
	assert.False(t, ds.HasColumn("ZIP"))
	assert.Equal(t, []string{"ZIP"}, ds.MissingColumns("FOLIO", "ZIP"))

	score, err := ds.ColumnValues("Score")
	require.NoError(t, err)
	require.Len(t, score, 2, "short rows are padded")
	assert.True(t, score[1].IsMissing())

	cell, err := ds.Cell(0, "mailing ADDRESS")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", cell.Text())
}

func TestDataset_ColumnNotFound(t *testing.T) {
	ds := dataset.New("x.csv", []string{"A"}, [][]string{{"1"}})

	_, err := ds.ColumnValues("B")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrColumnNotFound))

	_, err = ds.Cell(0, "B")
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	_, err = ds.Cell(5, "A")
	require.Error(t, err)
	assert.False(t, errors.Is(err, dataset.ErrColumnNotFound))
}

func TestDataset_SkipsEmptyRecords(t *testing.T) {
	ds := dataset.New("x.csv", []string{"A", "B"}, [][]string{
		{"1", "2"},
		{"", "  "},
		{},
		{"3", ""},
	})
	assert.Equal(t, 2, ds.RowCount())
	// Skipped rows still occupy spreadsheet lines
	assert.Equal(t, 2, ds.Line(0))
	assert.Equal(t, 5, ds.Line(1))
}

func TestLoad_LinesSkipBlankRows(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "ClientSms.csv")
		require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n\n,\n3,4\n"), 0o644))

		ds, err := dataset.Load(path)
		require.NoError(t, err)
		require.Equal(t, 2, ds.RowCount())
		assert.Equal(t, []int{2, 5}, []int{ds.Line(0), ds.Line(1)})
	})

	t.Run("xlsx", func(t *testing.T) {
		path := datasettest.WriteXLSX(t, dir, "ClientSms.xlsx", []string{"A", "B"}, [][]any{
			{"1", "2"},
			{},
			{"3", "4"},
		})

		ds, err := dataset.Load(path)
		require.NoError(t, err)
		require.Equal(t, 2, ds.RowCount())
		assert.Equal(t, []int{2, 4}, []int{ds.Line(0), ds.Line(1)})
	})
}

func TestDataset_DuplicateHeaderFirstWins(t *testing.T) {
	ds := dataset.New("x.csv", []string{"ZIP", "zip"}, [][]string{{"1", "2"}})
	v, err := ds.Cell(0, "ZIP")
	require.NoError(t, err)
	assert.Equal(t, "1", v.Text())
	assert.Equal(t, []string{"ZIP", "zip"}, ds.Columns())
}

func TestLoad_Workbook(t *testing.T) {
	dir := t.TempDir()
	path := datasettest.WriteXLSX(t, dir, "ClientSms.xlsx",
		[]string{"Address", "Zip", "Score"},
		[][]any{
			{"1 Main St", "02134", 10},
			{"2 Main St", 33101, 0},
		},
	)

	ds, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ClientSms.xlsx", ds.Name())
	assert.Equal(t, "Sheet1", ds.Sheet())
	assert.Equal(t, 2, ds.RowCount())

	zip, err := ds.Cell(0, "ZIP")
	require.NoError(t, err)
	assert.Equal(t, "02134", zip.Text(), "text cells keep leading zeros")

	score, err := ds.Cell(1, "SCORE")
	require.NoError(t, err)
	n, ok := score.Number()
	require.True(t, ok)
	assert.Equal(t, 0.0, n)
}

func TestLoad_CSVWithBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ClientMail.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("FOLIO,ADDRESS\n1,1 Main St\n2,\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	ds, err := dataset.Load(path)
	require.NoError(t, err)
	assert.True(t, ds.HasColumn("FOLIO"), "BOM must not leak into the first header")
	assert.Equal(t, 2, ds.RowCount())

	addr, err := ds.ColumnValues("ADDRESS")
	require.NoError(t, err)
	assert.True(t, addr[1].IsMissing())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "Broken.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip archive"), 0o644))

	empty := filepath.Join(dir, "Empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), wantErr: os.ErrNotExist},
		{name: "unsupported extension", path: filepath.Join(dir, "data.txt"), wantErr: dataset.ErrUnsupportedFormat},
		{name: "empty csv", path: empty, wantErr: dataset.ErrEmptyFile},
		{name: "corrupt workbook", path: corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := dataset.Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, ds)

			var loadErr *dataset.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.path, loadErr.Path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"123", 123, true},
		{"+5", 5, true},
		{".75", 0.75, true},
		{"1,000", 0, false},
		{"1e5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := dataset.ParseNumber(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
