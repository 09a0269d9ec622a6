package core_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	_ "github.com/JonMunkholm/fulfillaudit/internal/core/rules"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
	"github.com/JonMunkholm/fulfillaudit/internal/dataset/datasettest"
)

var cleanHeader = []string{"FOLIO", "ADDRESS", "ZIP", "MAILING ADDRESS", "MAILING ZIP", "SCORE"}

// cleanRows returns n rows with no duplicates, no blank addresses and no
// zero scores.
func cleanRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{
			1000 + i,
			fmt.Sprintf("%d Main St", i+1),
			"02134",
			fmt.Sprintf("PO Box %d", i+1),
			"10001",
			i%5 + 1,
		}
	}
	return rows
}

type countingRecorder struct {
	mu       sync.Mutex
	files    map[string]int
	findings map[core.Severity]int
	cats     []core.Category
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{files: map[string]int{}, findings: map[core.Severity]int{}}
}

func (r *countingRecorder) FileAudited(_ core.Category, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[status]++
}

func (r *countingRecorder) FindingEmitted(_ core.Category, _ string, s core.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings[s]++
}

func (r *countingRecorder) CategoryAudited(c core.Category, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cats = append(r.cats, c)
}

func TestRunner_EndToEnd(t *testing.T) {
	root := t.TempDir()
	datasettest.WriteXLSX(t, filepath.Join(root, "Acme"), "ClientSms.xlsx", cleanHeader, cleanRows(10))

	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	rec := newCountingRecorder()
	runner := core.NewRunner(core.WithClock(clock), core.WithRecorder(rec))

	report, err := runner.RunAll(context.Background(), []core.RunSpec{{
		Policy: core.PolicyFor(core.CategorySms, 10),
		Root:   root,
	}})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, clock.Now(), report.StartedAt)
	require.Len(t, report.Categories, 1)

	findings := report.Categories[0].Findings()
	require.Len(t, findings, 3)

	var lines []string
	for _, f := range findings {
		assert.Equal(t, core.SeverityFail, f.Severity)
		assert.Equal(t, core.RuleOwnerColumns, f.Rule)
		assert.Equal(t, "RC002", f.Code)
		assert.Equal(t, core.CategorySms, f.Category)
		lines = append(lines, f.Line())
	}
	assert.Equal(t, []string{
		"ClientSms.xlsx: OWNER FULL NAME Passed: False",
		"ClientSms.xlsx: OWNER FIRST NAME Passed: False",
		"ClientSms.xlsx: OWNER LAST NAME Passed: False",
	}, lines)

	assert.Equal(t, core.Summary{
		Files:        1,
		Loaded:       1,
		Fail:         3,
		FailingFiles: []string{"ClientSms.xlsx"},
	}, report.Summary)

	assert.Equal(t, 1, rec.files[core.FileStatusFailed])
	assert.Equal(t, 3, rec.findings[core.SeverityFail])
	assert.Equal(t, []core.Category{core.CategorySms}, rec.cats)
}

func TestRunner_RowCountEnabled(t *testing.T) {
	root := t.TempDir()
	datasettest.WriteXLSX(t, filepath.Join(root, "Acme"), "ClientSms.xlsx", cleanHeader, cleanRows(10))

	policy := core.PolicyFor(core.CategorySms, 12).WithRules([]string{core.RuleRowCount})
	report, err := core.NewRunner().Run(context.Background(), core.RunSpec{Policy: policy, Root: root})
	require.NoError(t, err)

	findings := report.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, "ClientSms.xlsx: Number of Rows == Clients Goal: False (rows: 10, goal: 12)", findings[0].Line())
}

func TestRunner_LoadErrorIsolated(t *testing.T) {
	root := t.TempDir()
	client := filepath.Join(root, "Acme")
	datasettest.WriteXLSX(t, client, "ClientSmsB.xlsx", cleanHeader, cleanRows(3))
	require.NoError(t, os.WriteFile(filepath.Join(client, "ClientSmsA.xlsx"), []byte("not a workbook"), 0o644))

	report, err := core.NewRunner().Run(context.Background(), core.RunSpec{
		Policy: core.PolicyFor(core.CategorySms, 3).WithRules([]string{core.RuleBlankAddress}),
		Root:   root,
	})
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	bad := report.Files[0]
	assert.Equal(t, "ClientSmsA.xlsx", bad.Name)
	assert.NotEmpty(t, bad.LoadError)
	require.Len(t, bad.Findings, 1)
	assert.Equal(t, core.SeverityInfo, bad.Findings[0].Severity)
	assert.Equal(t, core.RuleLoad, bad.Findings[0].Rule)
	assert.Equal(t, "FILE002", bad.Findings[0].Code)

	good := report.Files[1]
	assert.Equal(t, "ClientSmsB.xlsx", good.Name)
	assert.Empty(t, good.LoadError)
	assert.Equal(t, 3, good.Rows)
	assert.Empty(t, good.Findings)

	assert.Equal(t, 2, report.Summary.Files)
	assert.Equal(t, 1, report.Summary.LoadErrors)
	assert.Equal(t, 1, report.Summary.Info)
	assert.Empty(t, report.Summary.FailingFiles)
}

func TestRunner_CategoriesInOrder(t *testing.T) {
	var seen []string
	finder := func(root, category string, _ []string) ([]string, error) {
		seen = append(seen, category)
		return []string{filepath.Join(root, "c", "Client"+category+".csv")}, nil
	}
	loader := func(path string) (*dataset.Dataset, error) {
		return dataset.New(filepath.Base(path), []string{"ADDRESS"}, [][]string{{"1 Main"}}), nil
	}

	var specs []core.RunSpec
	for _, c := range core.Categories {
		specs = append(specs, core.RunSpec{
			Policy: core.PolicyFor(c, 1).WithRules([]string{core.RuleBlankAddress}),
			Root:   "root",
		})
	}

	report, err := core.NewRunner(core.WithFinder(finder), core.WithLoader(loader)).RunAll(context.Background(), specs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sms", "Mail", "Calling"}, seen)
	require.Len(t, report.Categories, 3)
	assert.Equal(t, 3, report.Summary.Loaded)
}

func TestRunner_UnknownRuleFailsBeforeProcessing(t *testing.T) {
	called := false
	finder := func(string, string, []string) ([]string, error) {
		called = true
		return nil, nil
	}

	specs := []core.RunSpec{
		{Policy: core.PolicyFor(core.CategorySms, 1)},
		{Policy: core.PolicyFor(core.CategoryMail, 1).Enable("no_such_rule")},
	}

	_, err := core.NewRunner(core.WithFinder(finder)).RunAll(context.Background(), specs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownRule))
	assert.False(t, called, "discovery ran before configuration was validated")
}

func TestRunner_MissingRootIsEmpty(t *testing.T) {
	report, err := core.NewRunner().Run(context.Background(), core.RunSpec{
		Policy: core.PolicyFor(core.CategoryCalling, 1),
		Root:   filepath.Join(t.TempDir(), "nope"),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.Zero(t, report.Summary.Files)
}

func TestRunner_Cancelled(t *testing.T) {
	root := t.TempDir()
	datasettest.WriteXLSX(t, filepath.Join(root, "Acme"), "ClientSms.xlsx", cleanHeader, cleanRows(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := core.NewRunner().RunAll(ctx, []core.RunSpec{{Policy: core.PolicyFor(core.CategorySms, 1), Root: root}})
	assert.ErrorIs(t, err, context.Canceled)
}
