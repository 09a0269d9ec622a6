package core

// runner.go orchestrates Validation Runs.
//
// For each category, in declared order:
//  1. Discover candidate files under the configured root
//  2. For each file (sorted by path): load the Dataset, run every rule of the
//     category policy in order, stamp and collect the findings
//  3. Summarise the category
//
// A file that cannot be loaded becomes a single Info finding and the run
// continues with the next file. Nothing is shared between files: each Dataset
// is owned by its file audit and dropped afterwards.

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
	"github.com/JonMunkholm/fulfillaudit/internal/discovery"
)

// RuleLoad names the pseudo-rule carried by load-failure findings.
const RuleLoad = "load"

// RunSpec is one {category, goal, folder} triple plus the policy to apply.
type RunSpec struct {
	Policy   Policy
	Root     string
	Patterns []string
}

// LoadFunc reads one file into a Dataset.
type LoadFunc func(path string) (*dataset.Dataset, error)

// FindFunc lists the candidate files of a category under root.
type FindFunc func(root, category string, patterns []string) ([]string, error)

// Recorder receives audit measurements. See internal/metrics.
type Recorder interface {
	FileAudited(category Category, status string)
	FindingEmitted(category Category, rule string, severity Severity)
	CategoryAudited(category Category, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FileAudited(Category, string)              {}
func (nopRecorder) FindingEmitted(Category, string, Severity) {}
func (nopRecorder) CategoryAudited(Category, time.Duration)   {}

// File audit statuses reported to the Recorder.
const (
	FileStatusPassed    = "passed"
	FileStatusFailed    = "failed"
	FileStatusLoadError = "load_error"
)

// Summary counts the outcome of a run.
type Summary struct {
	Files        int      `json:"files"`
	Loaded       int      `json:"loaded"`
	LoadErrors   int      `json:"loadErrors"`
	Pass         int      `json:"pass"`
	Fail         int      `json:"fail"`
	Info         int      `json:"info"`
	FailingFiles []string `json:"failingFiles,omitempty"`
}

// Add folds o into s.
func (s *Summary) Add(o Summary) {
	s.Files += o.Files
	s.Loaded += o.Loaded
	s.LoadErrors += o.LoadErrors
	s.Pass += o.Pass
	s.Fail += o.Fail
	s.Info += o.Info
	s.FailingFiles = append(s.FailingFiles, o.FailingFiles...)
}

// FileReport holds everything found in one file.
type FileReport struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Sheet     string    `json:"sheet,omitempty"`
	Rows      int       `json:"rows"`
	LoadError string    `json:"loadError,omitempty"`
	Findings  []Finding `json:"findings"`
}

// Failed reports whether any finding in the file is a Fail.
func (f FileReport) Failed() bool {
	for _, fd := range f.Findings {
		if fd.Severity == SeverityFail {
			return true
		}
	}
	return false
}

// CategoryReport is the result of running one RunSpec.
type CategoryReport struct {
	Category Category      `json:"category"`
	Policy   Policy        `json:"policy"`
	Root     string        `json:"root"`
	Files    []FileReport  `json:"files"`
	Summary  Summary       `json:"summary"`
	Duration time.Duration `json:"durationNs"`
	Error    string        `json:"error,omitempty"`
}

// Findings returns every finding of the category in file order.
func (c CategoryReport) Findings() []Finding {
	var all []Finding
	for _, f := range c.Files {
		all = append(all, f.Findings...)
	}
	return all
}

// Report is the result of a whole audit.
type Report struct {
	RunID      string           `json:"runId"`
	StartedAt  time.Time        `json:"startedAt"`
	Duration   time.Duration    `json:"durationNs"`
	Categories []CategoryReport `json:"categories"`
	Summary    Summary          `json:"summary"`
}

// Runner executes Validation Runs. A Runner holds no per-run state and can
// be reused; it must not be used by two goroutines at once (see AuditLimiter).
type Runner struct {
	load     LoadFunc
	find     FindFunc
	clock    clockwork.Clock
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLoader replaces the spreadsheet loader.
func WithLoader(fn LoadFunc) Option { return func(r *Runner) { r.load = fn } }

// WithFinder replaces file discovery.
func WithFinder(fn FindFunc) Option { return func(r *Runner) { r.find = fn } }

// WithClock sets the clock used for timestamps and durations.
func WithClock(c clockwork.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option { return func(r *Runner) { r.recorder = rec } }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

// NewRunner creates a Runner that loads files with dataset.Load and finds
// them with discovery.Find unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		load:     dataset.Load,
		find:     discovery.Find,
		clock:    clockwork.NewRealClock(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Validate checks that every spec has a valid category and that every rule it
// names is registered. Call it before any processing so configuration
// problems surface first.
func Validate(specs []RunSpec) error {
	for _, spec := range specs {
		if !spec.Policy.Category.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownCategory, int(spec.Policy.Category))
		}
		if _, err := Resolve(spec.Policy.Rules); err != nil {
			return fmt.Errorf("%s policy: %w", spec.Policy.Category, err)
		}
	}
	return nil
}

// RunAll runs every spec in order and returns the combined report.
// It stops early only when ctx is cancelled; per-category errors are
// recorded on the category and the run continues.
func (r *Runner) RunAll(ctx context.Context, specs []RunSpec) (*Report, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: r.clock.Now().UTC(),
	}
	logger := r.logger.With("run_id", report.RunID)
	logger.Info("audit started", "categories", len(specs))

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("audit cancelled: %w", err)
		}

		cat, err := r.run(ctx, logger, spec)
		if err != nil && ctx.Err() != nil {
			report.Categories = append(report.Categories, *cat)
			return report, fmt.Errorf("audit cancelled: %w", err)
		}
		report.Categories = append(report.Categories, *cat)
		report.Summary.Add(cat.Summary)
	}

	report.Duration = r.clock.Since(report.StartedAt)
	logger.Info("audit finished",
		"files", report.Summary.Files,
		"fail", report.Summary.Fail,
		"load_errors", report.Summary.LoadErrors,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// Run executes a single RunSpec.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (*CategoryReport, error) {
	if err := Validate([]RunSpec{spec}); err != nil {
		return nil, err
	}
	return r.run(ctx, r.logger, spec)
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, spec RunSpec) (*CategoryReport, error) {
	start := r.clock.Now()
	category := spec.Policy.Category
	logger = logger.With("category", category.String())

	report := &CategoryReport{
		Category: category,
		Policy:   spec.Policy,
		Root:     spec.Root,
	}

	// Validated by the caller
	defs, _ := Resolve(spec.Policy.Rules)

	paths, err := r.find(spec.Root, category.String(), spec.Patterns)
	if err != nil {
		report.Error = err.Error()
		logger.Error("file discovery failed", "root", spec.Root, "error", err)
		return report, err
	}
	logger.Info("starting category", "root", spec.Root, "files", len(paths), "goal", spec.Policy.Goal)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			report.Error = err.Error()
			return report, err
		}

		file := r.auditFile(logger, path, spec.Policy, defs)
		report.Files = append(report.Files, file)
		report.Summary.Add(summarise(file))
	}

	report.Duration = r.clock.Since(start)
	r.recorder.CategoryAudited(category, report.Duration)
	return report, nil
}

func (r *Runner) auditFile(logger *slog.Logger, path string, p Policy, defs []RuleDefinition) FileReport {
	name := filepath.Base(path)
	logger = logger.With("file", name)
	file := FileReport{Path: path, Name: name}

	ds, err := r.load(path)
	if err != nil {
		msg := MapError(err)
		logger.Warn("file skipped", "error", err, "code", msg.Code)
		file.LoadError = err.Error()
		file.Findings = []Finding{{
			SourceFile: name,
			Category:   p.Category,
			Rule:       RuleLoad,
			Code:       msg.Code,
			Severity:   SeverityInfo,
			Subject:    "File",
			Verb:       "could not be loaded",
			Value:      fmt.Sprintf("%s (%v)", msg.Message, err),
		}}
		r.recorder.FileAudited(p.Category, FileStatusLoadError)
		r.recorder.FindingEmitted(p.Category, RuleLoad, SeverityInfo)
		return file
	}

	file.Sheet = ds.Sheet()
	file.Rows = ds.RowCount()

	for _, def := range defs {
		for _, f := range def.Check(ds, p) {
			f.SourceFile = name
			f.Category = p.Category
			f.Rule = def.Name
			if f.Code == "" {
				f.Code = def.Code
			}
			file.Findings = append(file.Findings, f)
			r.recorder.FindingEmitted(p.Category, def.Name, f.Severity)
		}
	}

	status := FileStatusPassed
	if file.Failed() {
		status = FileStatusFailed
	}
	r.recorder.FileAudited(p.Category, status)
	logger.Debug("file audited", "rows", file.Rows, "findings", len(file.Findings), "status", status)
	return file
}

func summarise(f FileReport) Summary {
	s := Summary{Files: 1}
	if f.LoadError != "" {
		s.LoadErrors = 1
	} else {
		s.Loaded = 1
	}
	for _, fd := range f.Findings {
		switch fd.Severity {
		case SeverityPass:
			s.Pass++
		case SeverityFail:
			s.Fail++
		case SeverityInfo:
			s.Info++
		}
	}
	if f.Failed() {
		s.FailingFiles = []string{f.Name}
	}
	return s
}
