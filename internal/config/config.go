// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ricesearch/gloo/internal/trec"
)

// Config holds all application configuration.
type Config struct {
	// Pool construction
	Pool PoolConfig `yaml:"pool"`

	// Depth-k qrels extraction
	Qrels QrelsConfig `yaml:"qrels"`

	// Leave-one-out analysis
	LOO LOOConfig `yaml:"loo"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// PoolConfig holds pool builder inputs.
type PoolConfig struct {
	RunsTable  string `envconfig:"GLOO_RUNS_TABLE" yaml:"runs_table"`
	Track      string `envconfig:"GLOO_TRACK" yaml:"track"`
	Judgments  string `envconfig:"GLOO_JUDGMENTS" yaml:"judgments"`
	PoolRuns   string `envconfig:"GLOO_POOL_RUNS" yaml:"pool_runs"`
	Results    string `envconfig:"GLOO_RESULTS_TEMPLATE" yaml:"results"` // RUNTAG and TOPIC are substituted
	Topics     string `envconfig:"GLOO_TOPICS" yaml:"topics"`
	TopicsFile string `envconfig:"GLOO_TOPICS_FILE" yaml:"topics_file"`
	Depth      int    `envconfig:"GLOO_POOL_DEPTH" yaml:"depth"`
}

// QrelsConfig holds extraction filters.
type QrelsConfig struct {
	Depth    int    `envconfig:"GLOO_QRELS_DEPTH" yaml:"depth"`
	RelLevel string `envconfig:"GLOO_REL_LEVEL" yaml:"rel_level"`
	RunsList string `envconfig:"GLOO_RUNS_LIST" yaml:"runs_list"`
	PidList  string `envconfig:"GLOO_PID_LIST" yaml:"pid_list"`
	Annotate bool   `envconfig:"GLOO_ANNOTATE" yaml:"annotate"`
}

// LOOConfig holds leave-one-out inputs.
type LOOConfig struct {
	RunGroups       string   `envconfig:"GLOO_RUN_GROUPS" yaml:"run_groups"`
	Annotated       string   `envconfig:"GLOO_ANNOTATED" yaml:"annotated"`
	Measures        []string `envconfig:"GLOO_MEASURES" yaml:"measures"`
	OfficialPath    string   `envconfig:"GLOO_OFFICIAL_PATH" yaml:"official_path"`
	OfficialPattern string   `envconfig:"GLOO_OFFICIAL_PATTERN" yaml:"official_pattern"`
	LOOPath         string   `envconfig:"GLOO_LOO_PATH" yaml:"loo_path"`
	LOOPattern      string   `envconfig:"GLOO_LOO_PATTERN" yaml:"loo_pattern"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"GLOO_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"GLOO_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
// The result is not validated; callers apply their flag overrides first and
// then call Validate for the sections they use.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Pool = PoolConfig{
		RunsTable: "runs_table.adhoc",
		Track:     trec.DefaultTrack,
		Judgments: "qrels",
		PoolRuns:  "runs-list",
		Results:   "results/RUNTAG/tTOPIC",
		Topics:    "401-450",
		Depth:     trec.DefaultDepth,
	}

	cfg.Qrels = QrelsConfig{
		Depth:    10,
		RelLevel: "1",
	}

	cfg.LOO = LOOConfig{
		Measures:        []string{"map", "P_10", "recip_rank"},
		OfficialPath:    ".",
		OfficialPattern: "summary." + trec.RunPlaceholder,
		LOOPath:         ".",
		LOOPattern:      "eval." + trec.RunPlaceholder,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Section names a part of the configuration used by one command.
type Section string

// Configuration sections.
const (
	SectionPool  Section = "pool"
	SectionQrels Section = "qrels"
	SectionLOO   Section = "loo"
)

// Validate validates the logging settings and the given sections, or every
// section when none is given.
func (c *Config) Validate(sections ...Section) error {
	if len(sections) == 0 {
		sections = []Section{SectionPool, SectionQrels, SectionLOO}
	}

	var errs []string
	for _, section := range sections {
		switch section {
		case SectionPool:
			errs = append(errs, c.Pool.validate()...)
		case SectionQrels:
			errs = append(errs, c.Qrels.validate()...)
		case SectionLOO:
			errs = append(errs, c.LOO.validate()...)
		default:
			errs = append(errs, fmt.Sprintf("unknown config section %q", section))
		}
	}
	errs = append(errs, c.Log.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func (p PoolConfig) validate() []string {
	var errs []string
	if p.Depth < 1 {
		errs = append(errs, "pool depth must be positive")
	}

	for _, placeholder := range []string{trec.RunPlaceholder, trec.TopicPlaceholder} {
		if !strings.Contains(p.Results, placeholder) {
			errs = append(errs, fmt.Sprintf("results template %q must contain %s", p.Results, placeholder))
		}
	}

	if p.TopicsFile == "" {
		if _, err := trec.ParseTopics(p.Topics); err != nil {
			errs = append(errs, fmt.Sprintf("invalid topics %q", p.Topics))
		}
	}
	return errs
}

func (q QrelsConfig) validate() []string {
	if q.Depth < 0 {
		return []string{"qrels depth must not be negative"}
	}
	return nil
}

func (l LOOConfig) validate() []string {
	var errs []string
	if len(l.Measures) == 0 {
		errs = append(errs, "at least one measure is required")
	}

	if !strings.Contains(l.OfficialPattern, trec.RunPlaceholder) {
		errs = append(errs, fmt.Sprintf("official pattern %q must contain %s", l.OfficialPattern, trec.RunPlaceholder))
	}

	if !strings.Contains(l.LOOPattern, trec.RunPlaceholder) {
		errs = append(errs, fmt.Sprintf("loo pattern %q must contain %s", l.LOOPattern, trec.RunPlaceholder))
	}
	return errs
}

func (l LogConfig) validate() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", l.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", l.Format))
	}
	return errs
}

// TopicList resolves the configured topics.
func (c *Config) TopicList() ([]string, error) {
	if c.Pool.TopicsFile != "" {
		return trec.ReadList(c.Pool.TopicsFile)
	}
	return trec.ParseTopics(c.Pool.Topics)
}
