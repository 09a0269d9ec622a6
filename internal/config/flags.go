package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the audit, output and logging flags on fs. Flag
// defaults are the values already in c, so flags override the environment
// only when given.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Audit.Root, "root", c.Audit.Root, "fulfillment folder holding one subfolder per client")
	fs.IntVar(&c.Audit.SmsGoal, "sms-goal", c.Audit.SmsGoal, "expected row count of SMS files")
	fs.IntVar(&c.Audit.MailGoal, "mail-goal", c.Audit.MailGoal, "expected row count of Direct Mail files")
	fs.IntVar(&c.Audit.CallingGoal, "calling-goal", c.Audit.CallingGoal, "expected row count of Cold-Call files")
	fs.StringSliceVar(&c.Audit.Patterns, "pattern", c.Audit.Patterns, "glob pattern for files inside each client folder")
	fs.StringSliceVarP(&c.Audit.Categories, "category", "c", c.Audit.Categories, "categories to audit (Sms, Mail, Calling)")
	fs.StringVar(&c.Audit.PolicyFile, "policy", c.Audit.PolicyFile, "YAML file overriding goals and rules per category")
	fs.StringSliceVar(&c.Audit.Rules, "rules", c.Audit.Rules, "replace the rule list of every category")
	fs.StringSliceVar(&c.Audit.Enable, "enable", c.Audit.Enable, "add rules to every category")
	fs.StringSliceVar(&c.Audit.Disable, "disable", c.Audit.Disable, "remove rules from every category")

	fs.StringVarP(&c.Output.Format, "format", "o", c.Output.Format, "report format: text or json")
	fs.StringVar(&c.Logging.Level, "log-level", c.Logging.Level, "log level: debug, info, warn, error")
	fs.StringVar(&c.Logging.Format, "log-format", c.Logging.Format, "log format: text or json")
}

// BindServerFlags registers the report server flags on fs.
func (c *Config) BindServerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Server.Host, "host", c.Server.Host, "interface to bind to")
	fs.IntVarP(&c.Server.Port, "port", "p", c.Server.Port, "port to listen on")
	fs.DurationVar(&c.Server.RequestTimeout, "request-timeout", c.Server.RequestTimeout, "maximum duration of one request")
}
