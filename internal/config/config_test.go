package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/JonMunkholm/fulfillaudit/internal/core"
	_ "github.com/JonMunkholm/fulfillaudit/internal/core/rules"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audit.Root != "fulfillments" {
		t.Errorf("Audit.Root = %q, want %q", cfg.Audit.Root, "fulfillments")
	}
	if cfg.Audit.SmsGoal != 20000 {
		t.Errorf("Audit.SmsGoal = %d, want %d", cfg.Audit.SmsGoal, 20000)
	}
	if cfg.Audit.MailGoal != 20000 {
		t.Errorf("Audit.MailGoal = %d, want %d", cfg.Audit.MailGoal, 20000)
	}
	if cfg.Audit.CallingGoal != 10000 {
		t.Errorf("Audit.CallingGoal = %d, want %d", cfg.Audit.CallingGoal, 10000)
	}
	if !slices.Equal(cfg.Audit.Patterns, []string{"*.xlsx"}) {
		t.Errorf("Audit.Patterns = %v, want [*.xlsx]", cfg.Audit.Patterns)
	}
	if !slices.Equal(cfg.Audit.Categories, []string{"Sms", "Mail", "Calling"}) {
		t.Errorf("Audit.Categories = %v", cfg.Audit.Categories)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.RequestTimeout != 2*time.Minute {
		t.Errorf("Server.RequestTimeout = %v, want %v", cfg.Server.RequestTimeout, 2*time.Minute)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("FULFILLMENT_ROOT", "/srv/fulfillments")
	t.Setenv("SMS_GOAL", "15000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audit.Root != "/srv/fulfillments" {
		t.Errorf("Audit.Root = %q", cfg.Audit.Root)
	}
	if cfg.Audit.SmsGoal != 15000 {
		t.Errorf("Audit.SmsGoal = %d, want %d", cfg.Audit.SmsGoal, 15000)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("MAIL_GOAL", "123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audit.MailGoal != 123 {
		t.Errorf("Audit.MailGoal = %d, want %d", cfg.Audit.MailGoal, 123)
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("CC_GOAL", "ten thousand")

	_, err := Load()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Load() error = %v, want ErrConfiguration", err)
	}
	if !strings.Contains(err.Error(), "CC_GOAL") {
		t.Errorf("error should name CC_GOAL: %v", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("AUDIT_FILE_PATTERNS", "*.xlsx, *.csv ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !slices.Equal(cfg.Audit.Patterns, []string{"*.xlsx", "*.csv"}) {
		t.Errorf("Audit.Patterns = %v, want [*.xlsx *.csv]", cfg.Audit.Patterns)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	cfg.Audit.SmsGoal = -1
	cfg.Audit.Categories = []string{"Sms", "Email"}
	cfg.Output.Format = "xml"
	cfg.Server.Port = 70000

	err = cfg.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
	}
	for _, want := range []string{"SMS_GOAL", "AUDIT_CATEGORIES", "OUTPUT_FORMAT", "SERVER_PORT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %s:\n%v", want, err)
		}
	}
}

func TestValidate_BadPattern(t *testing.T) {
	cfg, _ := FromEnv()
	cfg.Audit.Patterns = []string{"[.xlsx"}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a malformed glob")
	}
}

func TestBindFlags_OverridesEnv(t *testing.T) {
	t.Setenv("SMS_GOAL", "100")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	cfg.BindServerFlags(fs)

	if err := fs.Parse([]string{"--mail-goal", "7", "-c", "Mail,Sms", "--enable", "row_count", "-p", "9000"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Audit.SmsGoal != 100 {
		t.Errorf("Audit.SmsGoal = %d, want env value 100", cfg.Audit.SmsGoal)
	}
	if cfg.Audit.MailGoal != 7 {
		t.Errorf("Audit.MailGoal = %d, want 7", cfg.Audit.MailGoal)
	}
	if !slices.Equal(cfg.Audit.Categories, []string{"Mail", "Sms"}) {
		t.Errorf("Audit.Categories = %v", cfg.Audit.Categories)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
}

func TestRunSpecs_OrderAndGoals(t *testing.T) {
	cfg, _ := FromEnv()
	cfg.Audit.Categories = []string{"Calling", "sms"}
	cfg.Audit.SmsGoal = 11
	cfg.Audit.CallingGoal = 33

	specs, err := cfg.RunSpecs()
	if err != nil {
		t.Fatalf("RunSpecs() error = %v", err)
	}

	if len(specs) != 2 {
		t.Fatalf("len(specs) = %d, want 2", len(specs))
	}
	if specs[0].Policy.Category != core.CategorySms || specs[0].Policy.Goal != 11 {
		t.Errorf("specs[0] = %v/%d, want Sms/11", specs[0].Policy.Category, specs[0].Policy.Goal)
	}
	if specs[1].Policy.Category != core.CategoryCalling || specs[1].Policy.Goal != 33 {
		t.Errorf("specs[1] = %v/%d, want Calling/33", specs[1].Policy.Category, specs[1].Policy.Goal)
	}
	if specs[0].Root != "fulfillments" {
		t.Errorf("Root = %q", specs[0].Root)
	}
}

func TestRunSpecs_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `
categories:
  Sms:
    goal: 15000
    rules: [owner_columns, value_histogram]
  calling:
    enable: [row_count]
    disable: [duplicates]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := FromEnv()
	cfg.Audit.PolicyFile = path
	cfg.Audit.Enable = []string{"required_columns"}

	specs, err := cfg.RunSpecs()
	if err != nil {
		t.Fatalf("RunSpecs() error = %v", err)
	}

	sms, mail, calling := specs[0].Policy, specs[1].Policy, specs[2].Policy

	if sms.Goal != 15000 {
		t.Errorf("Sms goal = %d, want 15000", sms.Goal)
	}
	if want := []string{"owner_columns", "value_histogram", "required_columns"}; !slices.Equal(sms.Rules, want) {
		t.Errorf("Sms rules = %v, want %v", sms.Rules, want)
	}
	if want := append(slices.Clone(core.DefaultRules), "required_columns"); !slices.Equal(mail.Rules, want) {
		t.Errorf("Mail rules = %v, want %v", mail.Rules, want)
	}
	if want := []string{"owner_columns", "blank_address", "zero_score", "row_count", "required_columns"}; !slices.Equal(calling.Rules, want) {
		t.Errorf("Calling rules = %v, want %v", calling.Rules, want)
	}
}

func TestRunSpecs_UnknownRule(t *testing.T) {
	cfg, _ := FromEnv()
	cfg.Audit.Enable = []string{"no_such_rule"}

	_, err := cfg.RunSpecs()
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, core.ErrUnknownRule) {
		t.Errorf("RunSpecs() error = %v, want ErrConfiguration wrapping ErrUnknownRule", err)
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown category", "categories:\n  Email:\n    goal: 1\n"},
		{"unknown key", "categories:\n  Sms:\n    gaol: 1\n"},
		{"negative goal", "categories:\n  Sms:\n    goal: -5\n"},
		{"not yaml", "categories: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePolicy([]byte(tt.doc)); !errors.Is(err, ErrConfiguration) {
				t.Errorf("ParsePolicy() error = %v, want ErrConfiguration", err)
			}
		})
	}

	if pf, err := ParsePolicy(nil); err != nil || len(pf.Categories) != 0 {
		t.Errorf("ParsePolicy(empty) = %v, %v", pf, err)
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadPolicy() error = %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"127.0.0.1", 8080, "127.0.0.1:8080"},
		{"", 9000, ":9000"},
		{"::1", 80, "[::1]:80"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigString(t *testing.T) {
	cfg, _ := FromEnv()
	s := cfg.String()
	for _, want := range []string{"Root: \"fulfillments\"", "Sms: 20000", "Format: \"text\""} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %s: %s", want, s)
		}
	}
}

func TestFromLookup(t *testing.T) {
	env := map[string]string{
		"CALLING_GOAL":        "750",
		"CC_GOAL":             "",
		"SERVER_AUDIT_WAIT":   "5s",
		"AUDIT_DISABLE_RULES": "zero_score,duplicates",
	}
	cfg, err := fromLookup(func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	})
	if err != nil {
		t.Fatalf("fromLookup() error = %v", err)
	}

	// An empty primary variable falls through to the alternate
	if cfg.Audit.CallingGoal != 750 {
		t.Errorf("Audit.CallingGoal = %d, want 750", cfg.Audit.CallingGoal)
	}
	if cfg.Server.AuditWait != 5*time.Second {
		t.Errorf("Server.AuditWait = %v, want 5s", cfg.Server.AuditWait)
	}
	if want := []string{"zero_score", "duplicates"}; !slices.Equal(cfg.Audit.Disable, want) {
		t.Errorf("Audit.Disable = %v, want %v", cfg.Audit.Disable, want)
	}
	if cfg.Audit.Rules != nil {
		t.Errorf("Audit.Rules = %v, want nil", cfg.Audit.Rules)
	}
}

func TestFromLookup_InvalidDuration(t *testing.T) {
	_, err := fromLookup(func(name string) (string, bool) {
		if name == "SERVER_REQUEST_TIMEOUT" {
			return "soon", true
		}
		return "", false
	})
	if !errors.Is(err, ErrConfiguration) || !strings.Contains(err.Error(), "SERVER_REQUEST_TIMEOUT") {
		t.Errorf("fromLookup() error = %v, want ErrConfiguration naming SERVER_REQUEST_TIMEOUT", err)
	}
}
