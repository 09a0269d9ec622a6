package config

// policy.go turns configuration into the RunSpecs the engine executes.
//
// Precedence, lowest first:
//  1. core.PolicyFor defaults with the configured goal
//  2. the policy file entry for the category (goal, rules, enable, disable)
//  3. the global Rules, Enable and Disable settings
//
// Categories always run in Sms, Mail, Calling order whatever order they are
// listed in.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
)

// PolicyFile is the YAML policy document.
//
//	categories:
//	  Sms:
//	    goal: 15000
//	    rules: [owner_columns, duplicates, blank_address, zero_score, value_histogram]
//	  Calling:
//	    enable: [row_count]
type PolicyFile struct {
	Categories map[string]CategoryPolicy `yaml:"categories"`
}

// CategoryPolicy overrides one category.
type CategoryPolicy struct {
	Goal    *int     `yaml:"goal"`
	Rules   []string `yaml:"rules"`
	Enable  []string `yaml:"enable"`
	Disable []string `yaml:"disable"`
}

// LoadPolicy reads and checks a policy file. Unknown keys and category names
// are errors.
func LoadPolicy(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: policy file: %w", ErrConfiguration, err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes a policy document.
func ParsePolicy(data []byte) (*PolicyFile, error) {
	var pf PolicyFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: policy file: %w", ErrConfiguration, err)
	}

	for name, cp := range pf.Categories {
		if _, err := core.ParseCategory(name); err != nil {
			return nil, fmt.Errorf("%w: policy file: %w", ErrConfiguration, err)
		}
		if cp.Goal != nil && *cp.Goal < 0 {
			return nil, fmt.Errorf("%w: policy file: %s goal (%d) must be non-negative", ErrConfiguration, name, *cp.Goal)
		}
	}

	return &pf, nil
}

// lookup finds the entry for c, ignoring the case of the YAML key.
func (pf *PolicyFile) lookup(c core.Category) (CategoryPolicy, bool) {
	if pf == nil {
		return CategoryPolicy{}, false
	}
	for name, cp := range pf.Categories {
		if parsed, err := core.ParseCategory(name); err == nil && parsed == c {
			return cp, true
		}
	}
	return CategoryPolicy{}, false
}

// SelectedCategories returns the configured categories in processing order.
func (c *Config) SelectedCategories() ([]core.Category, error) {
	selected := make(map[core.Category]bool, len(c.Audit.Categories))
	for _, name := range c.Audit.Categories {
		cat, err := core.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		selected[cat] = true
	}

	out := make([]core.Category, 0, len(selected))
	for _, cat := range core.Categories {
		if selected[cat] {
			out = append(out, cat)
		}
	}
	return out, nil
}

// Policies builds the effective policy of every selected category.
func (c *Config) Policies() ([]core.Policy, error) {
	var pf *PolicyFile
	if c.Audit.PolicyFile != "" {
		var err error
		if pf, err = LoadPolicy(c.Audit.PolicyFile); err != nil {
			return nil, err
		}
	}

	cats, err := c.SelectedCategories()
	if err != nil {
		return nil, err
	}

	policies := make([]core.Policy, 0, len(cats))
	for _, cat := range cats {
		p := core.PolicyFor(cat, c.Goal(cat))

		if cp, ok := pf.lookup(cat); ok {
			p = apply(p, cp.Goal, cp.Rules, cp.Enable, cp.Disable)
		}
		p = apply(p, nil, c.Audit.Rules, c.Audit.Enable, c.Audit.Disable)

		policies = append(policies, p)
	}
	return policies, nil
}

func apply(p core.Policy, goal *int, rules, enable, disable []string) core.Policy {
	if goal != nil {
		p.Goal = *goal
	}
	if len(rules) > 0 {
		p = p.WithRules(rules)
	}
	for _, name := range enable {
		p = p.Enable(name)
	}
	for _, name := range disable {
		p = p.Disable(name)
	}
	return p
}

// RunSpecs builds the validated RunSpecs for the configured categories.
// Unknown rule names are configuration errors.
func (c *Config) RunSpecs() ([]core.RunSpec, error) {
	policies, err := c.Policies()
	if err != nil {
		return nil, err
	}

	specs := make([]core.RunSpec, 0, len(policies))
	for _, p := range policies {
		specs = append(specs, core.RunSpec{
			Policy:   p,
			Root:     c.Audit.Root,
			Patterns: slices.Clone(c.Audit.Patterns),
		})
	}

	if err := core.Validate(specs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return specs, nil
}
