package rally

import (
	"time"

	"github.com/alexanderramin/reqreport/internal/repository"
)

const (
	DefaultBaseURL       = "https://rally1.rallydev.com/slm/webservice/v2.0"
	DefaultPageSize      = 200
	MaxPageSize          = 2000
	DefaultPriorityField = "c_MoSCow"
	DefaultTestPlanField = "c_TestPlan"
)

// Config holds everything the WSAPI client needs.
type Config struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	APIKey    string `yaml:"api_key" validate:"required"`
	Workspace string `yaml:"workspace"`

	// Project is a project name, ObjectID or ref. Empty means the
	// workspace default project.
	Project   string `yaml:"project"`
	ScopeUp   bool   `yaml:"scope_up"`
	ScopeDown bool   `yaml:"scope_down"`

	PageSize  int `yaml:"page_size" validate:"min=1,max=2000"`
	TimeoutMs int `yaml:"timeout_ms" validate:"min=1"`

	// RateLimit is the sustained request rate per second; 0 disables it.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`

	PriorityField string `yaml:"priority_field" validate:"required"`
	TestPlanField string `yaml:"test_plan_field" validate:"required"`

	LogCalls bool `yaml:"log_calls"`

	IntegrationName    string `yaml:"-"`
	IntegrationVersion string `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults. The API key is
// always left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		ScopeDown:          true,
		PageSize:           DefaultPageSize,
		TimeoutMs:          30000,
		RateLimit:          5,
		PriorityField:      DefaultPriorityField,
		TestPlanField:      DefaultTestPlanField,
		IntegrationName:    "reqreport",
		IntegrationVersion: "dev",
	}
}

// Scope returns the configured project scope.
func (c Config) Scope() repository.ProjectScope {
	return repository.ProjectScope{Project: c.Project, Up: c.ScopeUp, Down: c.ScopeDown}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
