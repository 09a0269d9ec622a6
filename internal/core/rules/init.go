// Package rules registers the fulfillment data-quality rules with the core
// registry. Import this package for its side effects to make the rules
// available to policies:
//
//	import _ "github.com/JonMunkholm/fulfillaudit/internal/core/rules"
//
// Each rule file uses init() to register its rule. Rules are pure: they read
// the Dataset, never modify it, and return their findings in a fixed order.
package rules
