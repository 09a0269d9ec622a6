package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
)

// ErrConfiguration wraps every configuration problem. It is fatal for the
// whole run and is reported before any file is processed.
var ErrConfiguration = errors.New("configuration error")

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// it, so flags can still be applied on top.
func FromEnv() (*Config, error) {
	return fromLookup(os.LookupEnv)
}

// lookupFunc reports the value of a variable and whether it is set.
type lookupFunc func(name string) (string, bool)

func fromLookup(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// parsers convert a raw setting into a field of the matching type.
var parsers = map[reflect.Type]func(string) (any, error){
	reflect.TypeFor[string](): func(s string) (any, error) { return s, nil },
	reflect.TypeFor[int](): func(s string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %w", err)
		}
		return n, nil
	},
	reflect.TypeFor[bool](): func(s string) (any, error) {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean: %w", err)
		}
		return b, nil
	},
	reflect.TypeFor[time.Duration](): func(s string) (any, error) {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		return d, nil
	},
	reflect.TypeFor[[]string](): func(s string) (any, error) { return splitList(s), nil },
}

// loadStruct fills the fields of v tagged `env:"NAME"`. A field may name a
// fallback variable with `envAlt` and a value for when neither is set with
// `default`. Nested structs are walked.
func loadStruct(v reflect.Value, lookup lookupFunc) error {
	for i := range v.NumField() {
		field, fv := v.Type().Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv, lookup); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, source := resolve(field.Tag, lookup)
		if raw == "" {
			continue
		}

		parse, ok := parsers[field.Type]
		if !ok {
			return fmt.Errorf("%s: unsupported field type %s", name, field.Type)
		}
		val, err := parse(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", source, raw, err)
		}
		fv.Set(reflect.ValueOf(val))
	}
	return nil
}

// resolve returns the raw value of a field and the variable it came from.
// Empty variables count as unset.
func resolve(tag reflect.StructTag, lookup lookupFunc) (value, source string) {
	for _, name := range []string{tag.Get("env"), tag.Get("envAlt")} {
		if name == "" {
			continue
		}
		if v, ok := lookup(name); ok && v != "" {
			return v, name
		}
	}
	return tag.Get("default"), tag.Get("env") + " default"
}

// splitList splits comma-separated values and trims whitespace.
func splitList(value string) []string {
	var out []string
	for p := range strings.SplitSeq(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Audit validation
	if strings.TrimSpace(c.Audit.Root) == "" {
		errs = append(errs, "FULFILLMENT_ROOT is required")
	}
	for _, g := range []struct {
		env  string
		goal int
	}{
		{"SMS_GOAL", c.Audit.SmsGoal},
		{"DM_GOAL", c.Audit.MailGoal},
		{"CC_GOAL", c.Audit.CallingGoal},
	} {
		if g.goal < 0 {
			errs = append(errs, fmt.Sprintf("%s (%d) must be non-negative", g.env, g.goal))
		}
	}
	if len(c.Audit.Categories) == 0 {
		errs = append(errs, "AUDIT_CATEGORIES must name at least one category")
	}
	for _, name := range c.Audit.Categories {
		if _, err := core.ParseCategory(name); err != nil {
			errs = append(errs, fmt.Sprintf("AUDIT_CATEGORIES: %v", err))
		}
	}
	if len(c.Audit.Patterns) == 0 {
		errs = append(errs, "AUDIT_FILE_PATTERNS must name at least one pattern")
	}
	for _, p := range c.Audit.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Sprintf("AUDIT_FILE_PATTERNS (%q): %v", p, err))
		}
	}

	// Output validation
	validOutputs := map[string]bool{"text": true, "json": true}
	if !validOutputs[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Sprintf("OUTPUT_FORMAT (%q) must be one of: text, json", c.Output.Format))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}
	if c.Server.AuditWait <= 0 {
		errs = append(errs, "SERVER_AUDIT_WAIT must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: validation failed:\n  - %s", ErrConfiguration, strings.Join(errs, "\n  - "))
	}

	return nil
}

// Goal returns the configured row-count goal for a category.
func (c *Config) Goal(cat core.Category) int {
	switch cat {
	case core.CategorySms:
		return c.Audit.SmsGoal
	case core.CategoryMail:
		return c.Audit.MailGoal
	case core.CategoryCalling:
		return c.Audit.CallingGoal
	default:
		panic(fmt.Sprintf("no goal for %v", cat))
	}
}

// String returns a readable representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Audit: {Root: %q, Goals: {Sms: %d, Mail: %d, Calling: %d}, Categories: %v, Patterns: %v, PolicyFile: %q}, ",
		c.Audit.Root, c.Audit.SmsGoal, c.Audit.MailGoal, c.Audit.CallingGoal,
		c.Audit.Categories, c.Audit.Patterns, c.Audit.PolicyFile))
	b.WriteString(fmt.Sprintf("Output: {Format: %q}, ", c.Output.Format))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
