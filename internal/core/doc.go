// Package core provides the rule-validation engine for fulfillment audits.
//
// This package holds the audit domain independent of any output or
// transport: the CLI, the report server and tests all drive the same
// [Runner].
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Categories: Sms, Mail and Calling, always processed in that order.
//   - Policies: per-category goal, required columns and ordered rule list.
//   - Rule Registry: rules are registered by name at init time.
//   - Runner: discovers files, loads each into a dataset, runs the policy's
//     rules and collects findings into a [Report].
//
// # Rule Registry
//
// Rules are registered at init time using [Register]. Each [RuleDefinition]
// carries a name, a support code and a check:
//
//	core.Register(core.RuleDefinition{
//	    Name:  core.RuleZeroScore,
//	    Label: "Zero score",
//	    Code:  "RC005",
//	    Check: checkZeroScore,
//	})
//
// Rule implementations live in core/rules; import it for its side effects:
//
//	import _ "github.com/JonMunkholm/fulfillaudit/internal/core/rules"
//
// # Running an Audit
//
//	runner := core.NewRunner(core.WithRecorder(metrics.Recorder{}))
//	report, err := runner.RunAll(ctx, specs)
//
// A file that cannot be loaded becomes one Info finding and never aborts the
// batch. Unknown rule names in a policy fail [Validate] before any file is
// read.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (missing, corrupt, encoding, format)
//   - VAL004: Missing column
//   - CFG001-CFG003: Configuration errors (settings, rules, categories)
//   - AUD001-AUD003: Audit errors (busy, cancelled, timeout)
//
// Findings carry the code of the rule that produced them (RC001-RC008).
package core
