// Package config provides centralized configuration management for the auditor.
// It loads configuration from environment variables with sensible defaults,
// lets command-line flags and an optional YAML policy file override them, and
// validates all settings before any file is processed.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Audit   AuditConfig
	Output  OutputConfig
	Logging LoggingConfig
	Server  ServerConfig
}

// AuditConfig holds what to audit and the per-category goals.
type AuditConfig struct {
	// Root is the fulfillment folder holding one subfolder per client (default: fulfillments)
	Root string `env:"FULFILLMENT_ROOT" envAlt:"AUDIT_ROOT" default:"fulfillments"`

	// SmsGoal is the expected row count of SMS files (default: 20000)
	SmsGoal int `env:"SMS_GOAL" default:"20000"`

	// MailGoal is the expected row count of Direct Mail files (default: 20000)
	MailGoal int `env:"DM_GOAL" envAlt:"MAIL_GOAL" default:"20000"`

	// CallingGoal is the expected row count of Cold-Call files (default: 10000)
	CallingGoal int `env:"CC_GOAL" envAlt:"CALLING_GOAL" default:"10000"`

	// Patterns are the glob patterns matched inside each client folder (default: *.xlsx)
	Patterns []string `env:"AUDIT_FILE_PATTERNS" default:"*.xlsx"`

	// Categories are the categories to audit, always run in Sms, Mail, Calling order
	Categories []string `env:"AUDIT_CATEGORIES" default:"Sms,Mail,Calling"`

	// PolicyFile is an optional YAML file overriding goals and rules per category
	PolicyFile string `env:"AUDIT_POLICY_FILE"`

	// Rules replaces the rule list of every category when set
	Rules []string `env:"AUDIT_RULES"`

	// Enable adds rules to every category
	Enable []string `env:"AUDIT_ENABLE_RULES"`

	// Disable removes rules from every category
	Disable []string `env:"AUDIT_DISABLE_RULES"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	// Format is the report format: text or json (default: text)
	Format string `env:"OUTPUT_FORMAT" default:"text"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ServerConfig holds settings for the report server.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds one request, including a full audit (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`

	// AuditWait is how long a request waits for a running audit before
	// failing with 503 (default: 30s)
	AuditWait time.Duration `env:"SERVER_AUDIT_WAIT" default:"30s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
