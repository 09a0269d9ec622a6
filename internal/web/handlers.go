package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	"github.com/JonMunkholm/fulfillaudit/internal/web/templates"
)

// audit runs the configured categories, or only the one named in the
// "category" query parameter. One audit runs at a time.
func (s *Server) audit(ctx context.Context, r *http.Request) (*core.Report, error) {
	specs, err := s.specsFor(r.URL.Query().Get("category"))
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.runner(ctx).RunAll(ctx, specs)
}

// specsFor filters the configured specs to one category. Empty means all.
func (s *Server) specsFor(name string) ([]core.RunSpec, error) {
	if name == "" {
		return s.specs, nil
	}

	c, err := core.ParseCategory(name)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(s.specs, func(spec core.RunSpec) bool { return spec.Policy.Category == c })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s is not configured", core.ErrUnknownCategory, c)
	}
	return s.specs[i : i+1], nil
}

// handleReport renders the HTML report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.audit(r.Context(), r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.ReportPage(report).Render(r.Context(), w)
}

// handleAudit returns the report as JSON.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.audit(r.Context(), r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, report)
}

// handlePolicies lists the effective policy of every configured category.
func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	policies := make([]core.Policy, len(s.specs))
	for i, spec := range s.specs {
		policies[i] = spec.Policy
	}
	writeJSON(w, r, policies)
}

// ruleInfo is the JSON view of a registered rule.
type ruleInfo struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Reporting   bool   `json:"reporting"`
}

// handleRules lists every registered rule.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	rules := make([]ruleInfo, len(defs))
	for i, d := range defs {
		rules[i] = ruleInfo{
			Name:        d.Name,
			Label:       d.Label,
			Code:        d.Code,
			Description: d.Description,
			Reporting:   d.Reporting,
		}
	}
	writeJSON(w, r, rules)
}

// handleStatus reports whether an audit is running.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.limiter.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
