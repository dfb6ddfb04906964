// Package config loads hydrate settings from YAML, the environment and flags.
package config

import (
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/upsert"
)

// EnvPrefix prefixes every environment variable hydrate reads.
const EnvPrefix = "HYDRATE_"

// Auth modes.
const (
	AuthClientSecret = "clientSecret"
	AuthToken        = "token"
)

// Settings is the full settings surface.
type Settings struct {
	Tenant    TenantSettings   `yaml:"tenant" envPrefix:"TENANT_"`
	Auth      AuthSettings     `yaml:"auth" envPrefix:"AUTH_"`
	Graph     GraphSettings    `yaml:"graph" envPrefix:"GRAPH_"`
	Options   OptionSettings   `yaml:"options" envPrefix:"OPTIONS_"`
	Templates TemplateSettings `yaml:"templates" envPrefix:"TEMPLATES_"`
	// Families toggles individual families; a family missing from the map is enabled.
	Families map[string]bool `yaml:"families" env:"FAMILIES" validate:"dive,keys,family,endkeys"`
	Report   ReportSettings  `yaml:"report" envPrefix:"REPORT_"`
	History  HistorySettings `yaml:"history" envPrefix:"HISTORY_"`
	Log      LogSettings     `yaml:"log" envPrefix:"LOG_"`
}

// TenantSettings identifies the target tenant.
type TenantSettings struct {
	ID          string `yaml:"id" env:"ID"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" validate:"required,environment"`
}

// AuthSettings selects how requests are authorised.
type AuthSettings struct {
	Mode         string `yaml:"mode" env:"MODE" validate:"oneof=clientSecret token"`
	ClientID     string `yaml:"clientId" env:"CLIENT_ID"`
	ClientSecret string `yaml:"clientSecret" env:"CLIENT_SECRET"`
	Token        string `yaml:"token" env:"TOKEN"`
}

// GraphSettings configures the remote endpoint.
type GraphSettings struct {
	// BaseURL overrides the environment's service root.
	BaseURL string `yaml:"baseURL" env:"BASE_URL" validate:"omitempty,url"`
	// Shim points at a JSON file standing in for the tenant.
	Shim    string        `yaml:"shim" env:"SHIM"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"duration_min=1s"`
}

// OptionSettings are the reconciliation switches.
type OptionSettings struct {
	Mode         string        `yaml:"mode" env:"MODE" validate:"oneof=create delete"`
	DryRun       bool          `yaml:"dryRun" env:"DRY_RUN"`
	ForceUpdate  bool          `yaml:"forceUpdate" env:"FORCE_UPDATE"`
	UpdatePolicy string        `yaml:"updatePolicy" env:"UPDATE_POLICY" validate:"oneof=update skip"`
	NamePrefix   string        `yaml:"namePrefix" env:"NAME_PREFIX"`
	Marker       string        `yaml:"marker" env:"MARKER" validate:"required"`
	Delay        time.Duration `yaml:"delay" env:"DELAY" validate:"duration_min=0s"`
}

// TemplateSettings locates the template tree.
type TemplateSettings struct {
	Path       string `yaml:"path" env:"PATH" validate:"required_without=Repository"`
	Repository string `yaml:"repository" env:"REPOSITORY" validate:"omitempty,git_url"`
	Ref        string `yaml:"ref" env:"REF"`
	// Subdir is the template root inside the repository.
	Subdir string `yaml:"subdir" env:"SUBDIR"`
}

// ReportSettings controls report files.
type ReportSettings struct {
	Path    string   `yaml:"path" env:"PATH"`
	Formats []string `yaml:"formats" env:"FORMATS" envSeparator:"," validate:"dive,report_format"`
}

// HistorySettings enables the run ledger when DSN is set.
type HistorySettings struct {
	Driver string `yaml:"driver" env:"DRIVER" validate:"oneof=sqlite3 postgres"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns the settings used before any file, variable or flag is applied.
func Default() Settings {
	return Settings{
		Tenant: TenantSettings{Environment: "Global"},
		Auth:   AuthSettings{Mode: AuthClientSecret},
		Graph:  GraphSettings{Timeout: 60 * time.Second},
		Options: OptionSettings{
			Mode:         string(model.ModeCreate),
			UpdatePolicy: string(upsert.PolicyUpdate),
			Marker:       "Imported by hydrate",
			Delay:        500 * time.Millisecond,
		},
		Templates: TemplateSettings{Path: "templates"},
		Families:  map[string]bool{},
		Report:    ReportSettings{Path: "reports", Formats: []string{"markdown"}},
		History:   HistorySettings{Driver: "sqlite3"},
		Log:       LogSettings{Level: "info"},
	}
}

// Cloud returns the national cloud for Tenant.Environment.
func (s *Settings) Cloud() graph.Cloud {
	cloud, ok := graph.LookupCloud(s.Tenant.Environment)
	if !ok {
		cloud, _ = graph.LookupCloud("Global")
	}
	return cloud
}

// GraphURL is the service root requests go to.
func (s *Settings) GraphURL() string {
	if s.Graph.BaseURL != "" {
		return strings.TrimRight(s.Graph.BaseURL, "/")
	}
	return s.Cloud().GraphURL
}

// UseShim reports whether the file shim replaces the remote API.
func (s *Settings) UseShim() bool {
	return s.Graph.Shim != ""
}

// Mode returns the run mode.
func (s *Settings) Mode() model.Mode {
	return model.Mode(s.Options.Mode)
}

// Policy returns the update policy.
func (s *Settings) Policy() upsert.Policy {
	p, err := upsert.ParsePolicy(s.Options.UpdatePolicy)
	if err != nil {
		return upsert.PolicyUpdate
	}
	return p
}

// DisabledFamilies lists families explicitly switched off, sorted.
func (s *Settings) DisabledFamilies() []string {
	var off []string
	for name, on := range s.Families {
		if !on {
			off = append(off, strings.ToLower(name))
		}
	}
	sort.Strings(off)
	return off
}

// FamilyEnabled reports whether name is switched on.
func (s *Settings) FamilyEnabled(name string) bool {
	for key, on := range s.Families {
		if strings.EqualFold(key, name) {
			return on
		}
	}
	return true
}

// HistoryEnabled reports whether runs are recorded.
func (s *Settings) HistoryEnabled() bool {
	return s.History.DSN != ""
}
