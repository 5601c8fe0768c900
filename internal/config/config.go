// Package config loads reqreport settings. Sources are layered, later ones
// winning: built-in defaults, the YAML config file, a .env file in the
// working directory, then process environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/rally"
	"github.com/alexanderramin/reqreport/internal/repository"
)

// Backend selects the data source.
type Backend string

const (
	BackendRally Backend = "rally"
	BackendLocal Backend = "local"
)

// ReportDefaults seed report requests when flags are not given.
type ReportDefaults struct {
	Tags                  []string `yaml:"tags" validate:"dive,oneof=PRD NFR"`
	IncludeTestPlanColumn bool     `yaml:"include_test_plan"`
	FullHierarchy         bool     `yaml:"full_hierarchy"`
	Strict                bool     `yaml:"strict"`
	MaxDepth              int      `yaml:"max_depth" validate:"min=1,max=4096"`
}

type Config struct {
	Backend     Backend `yaml:"backend" validate:"oneof=rally local"`
	DBPath      string  `yaml:"db" validate:"required"`
	MetricsFile string  `yaml:"metrics_file"`
	Verbose     bool    `yaml:"verbose"`

	// Rally also carries the project scope, which the local backend
	// honours against the imported project tree.
	Rally  rally.Config   `yaml:"rally"`
	Report ReportDefaults `yaml:"report"`
}

// Default returns a Config with sensible defaults. The Rally backend is
// selected but has no API key.
func Default() *Config {
	return &Config{
		Backend: BackendRally,
		DBPath:  defaultDBPath(),
		Rally:   rally.DefaultConfig(),
		Report: ReportDefaults{
			Tags:     []string{string(domain.TagFunctional), string(domain.TagNonFunctional)},
			MaxDepth: 64,
		},
	}
}

// Scope returns the configured project scope.
func (c *Config) Scope() repository.ProjectScope {
	return c.Rally.Scope()
}

// RequirementTags returns the configured tags in report order.
func (c *Config) RequirementTags() []domain.RequirementTag {
	tags := make([]domain.RequirementTag, 0, len(c.Report.Tags))
	for _, t := range c.Report.Tags {
		tags = append(tags, domain.RequirementTag(t))
	}
	return tags
}

// DefaultPath returns ~/.reqreport/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".reqreport", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".reqreport", "workspace.db")
	}
	return filepath.Join(home, ".reqreport", "workspace.db")
}

// Load builds the effective configuration. An explicit path must exist;
// the default path is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	dotenv, err := godotenv.Read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	// A non-empty process variable wins over .env; the process
	// environment itself is left untouched.
	getenv := func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return dotenv[name]
	}
	cfg.applyEnv(getenv)

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("REQREPORT_BACKEND"); v != "" {
		c.Backend = Backend(strings.ToLower(v))
	}
	if v := getenv("REQREPORT_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("REQREPORT_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := getenv("RALLY_BASE_URL"); v != "" {
		c.Rally.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("RALLY_API_KEY"); v != "" {
		c.Rally.APIKey = v
	}
	if v := getenv("RALLY_WORKSPACE"); v != "" {
		c.Rally.Workspace = v
	}
	if v := getenv("RALLY_PROJECT"); v != "" {
		c.Rally.Project = v
	}
	envBool(getenv, "RALLY_SCOPE_UP", &c.Rally.ScopeUp)
	envBool(getenv, "RALLY_SCOPE_DOWN", &c.Rally.ScopeDown)
	envBool(getenv, "REQREPORT_LOG_CALLS", &c.Rally.LogCalls)
	if v := getenv("RALLY_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Rally.PageSize = n
		}
	}
	if v := getenv("RALLY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Rally.TimeoutMs = n
		}
	}
	if v := getenv("RALLY_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.Rally.RateLimit = f
		}
	}
	if v := getenv("RALLY_PRIORITY_FIELD"); v != "" {
		c.Rally.PriorityField = v
	}
	if v := getenv("RALLY_TEST_PLAN_FIELD"); v != "" {
		c.Rally.TestPlanField = v
	}
}

func envBool(getenv func(string) string, name string, dst *bool) {
	v := getenv(name)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for the selected backend. Rally
// settings are only checked when Rally is the backend.
func (c *Config) Validate() error {
	if err := validate.StructExcept(c, "Rally"); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Backend == BackendRally {
		if err := validate.Struct(c.Rally); err != nil {
			return fmt.Errorf("invalid rally config: %w", err)
		}
	}
	return nil
}
