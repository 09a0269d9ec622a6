package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/fulfillaudit/internal/dataset"
)

// ErrUnknownRule is returned when a policy names a rule that is not registered.
var ErrUnknownRule = errors.New("unknown rule")

// Rule names. Rule implementations register under these names at init.
const (
	RuleRowCount        = "row_count"
	RuleOwnerColumns    = "owner_columns"
	RuleDuplicates      = "duplicates"
	RuleBlankAddress    = "blank_address"
	RuleZeroScore       = "zero_score"
	RuleRequiredColumns = "required_columns"
	RuleAddressMatch    = "address_match"
	RuleValueHistogram  = "value_histogram"
)

// CheckFunc inspects a dataset and returns zero or more findings.
// Implementations must not modify ds. SourceFile, Category, Rule and an
// empty Code are filled in by the Runner.
type CheckFunc func(ds *dataset.Dataset, p Policy) []Finding

// RuleDefinition contains everything needed to run a rule.
type RuleDefinition struct {
	Name        string // Unique identifier: "owner_columns"
	Label       string // Display name: "Owner columns"
	Code        string // Support code stamped on findings: "RC002"
	Description string
	Reporting   bool // Info-only rule with no pass/fail gate
	Check       CheckFunc
}

var (
	registry   = make(map[string]RuleDefinition)
	registryMu sync.RWMutex
)

// Register adds a rule definition to the registry.
// Panics if a rule with the same name is already registered or Check is nil.
func Register(def RuleDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Check == nil {
		panic(fmt.Sprintf("rule %s has no check", def.Name))
	}
	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("rule already registered: %s", def.Name))
	}

	registry[def.Name] = def
}

// Get returns a rule definition by name.
// Returns false if not found.
func Get(name string) (RuleDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// Resolve looks up every name in order. The first unknown name fails the
// whole lookup.
func Resolve(names []string) ([]RuleDefinition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defs := make([]RuleDefinition, 0, len(names))
	for _, name := range names {
		def, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// All returns all registered rule definitions sorted by name.
func All() []RuleDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]RuleDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// RuleCount returns the number of registered rules.
func RuleCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered rules.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]RuleDefinition)
}
