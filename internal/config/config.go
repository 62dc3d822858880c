// Package config loads planrecon settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"planrecon/internal/adapters/jira"
	"planrecon/internal/domain"
)

// Environment overrides
const (
	EnvDatabase     = "PLANRECON_DB"
	EnvTrackerURL   = "PLANRECON_TRACKER_URL"
	EnvTrackerToken = "PLANRECON_TRACKER_TOKEN"
	EnvReportDir    = "PLANRECON_REPORT_DIR"
)

const DefaultReportDir = "resources/reports"

// Config is the complete planrecon configuration
type Config struct {
	Database  string        `yaml:"database" validate:"required"`
	ReportDir string        `yaml:"report_dir" validate:"required"`
	Plan      PlanConfig    `yaml:"plan"`
	Tracker   TrackerConfig `yaml:"tracker"`
	Log       LogConfig     `yaml:"log"`
}

// PlanConfig controls plan import
type PlanConfig struct {
	ReferenceFieldID int64 `yaml:"reference_field_id" validate:"gt=0"`
}

// TrackerConfig controls the issue tracker connection and diff semantics
type TrackerConfig struct {
	URL               string        `yaml:"url" validate:"omitempty,url"`
	Token             string        `yaml:"token"`
	Project           string        `yaml:"project"`
	ClosedStatuses    []string      `yaml:"closed_statuses" validate:"min=1,dive,required"`
	Concurrency       int           `yaml:"concurrency" validate:"min=1,max=32"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" validate:"gte=0"`
	PageSize          int           `yaml:"page_size" validate:"min=1,max=1000"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	ParentField       string        `yaml:"parent_field" validate:"required"`
	ExcludedTypes     []string      `yaml:"excluded_types"`
}

// JiraConfig maps the tracker section onto the Jira client settings
func (t TrackerConfig) JiraConfig() jira.Config {
	return jira.Config{
		BaseURL:           t.URL,
		Token:             t.Token,
		Timeout:           t.Timeout,
		RequestsPerSecond: t.RequestsPerSecond,
		Burst:             t.Burst,
		PageSize:          t.PageSize,
		ParentField:       t.ParentField,
		ExcludedTypes:     t.ExcludedTypes,
	}
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database:  DefaultDatabasePath(),
		ReportDir: DefaultReportDir,
		Plan: PlanConfig{
			ReferenceFieldID: domain.DefaultReferenceFieldID,
		},
		Tracker: TrackerConfig{
			ClosedStatuses:    append([]string(nil), domain.DefaultClosedStatuses...),
			Concurrency:       1,
			RequestsPerSecond: 10,
			Burst:             5,
			PageSize:          100,
			Timeout:           30 * time.Second,
			ParentField:       "Parent Link",
			ExcludedTypes:     []string{"Sub-task"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/planrecon/config.yaml
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "planrecon", "config.yaml")
}

// DefaultDatabasePath returns $XDG_DATA_HOME/planrecon/plan.db
func DefaultDatabasePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "planrecon", "plan.db")
}

// Option adjusts a loaded configuration before validation
type Option func(*Config)

// WithLogLevel overrides the configured log level when level is not empty
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.Log.Level = level
		}
	}
}

// Load reads the configuration at path, applies environment overrides and
// opts, then validates the result. An empty path means DefaultPath, which may
// be absent.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := loadFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvTrackerURL); v != "" {
		c.Tracker.URL = v
	}
	if v := os.Getenv(EnvTrackerToken); v != "" {
		c.Tracker.Token = v
	}
	if v := os.Getenv(EnvReportDir); v != "" {
		c.ReportDir = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return err
	}
	return nil
}

// NewLogger builds the slog logger described by the log section
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WriteDefault writes a commented starter configuration to path
func WriteDefault(path string) error {
	content := `# planrecon configuration
database: ` + DefaultDatabasePath() + `
report_dir: ` + DefaultReportDir + `

plan:
  # extended attribute holding the tracker key
  reference_field_id: 188743731

tracker:
  url: https://jira.example.com
  # token: set PLANRECON_TRACKER_TOKEN instead
  project: ""
  closed_statuses: [Closed]
  concurrency: 1
  requests_per_second: 10
  burst: 5
  page_size: 100
  timeout: 30s
  parent_field: Parent Link
  excluded_types: [Sub-task]

log:
  level: info
  format: text
`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
