package model

import "time"

// Config is the complete runtime configuration. Rule tables are plain data
// here so they can be tested and extended without code changes; the engine
// receives them at construction and never mutates them.
type Config struct {
	Rules       RulesConfig       `yaml:"rules" mapstructure:"rules"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Eligibility EligibilityConfig `yaml:"eligibility" mapstructure:"eligibility"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// RulesConfig holds the fixed denial-reason vocabularies and the mock
// classifier table. Matching is case-insensitive on trimmed text.
type RulesConfig struct {
	Retryable    []string `yaml:"retryable" mapstructure:"retryable"`
	NonRetryable []string `yaml:"non_retryable" mapstructure:"non_retryable"`
	Ambiguous    []string `yaml:"ambiguous" mapstructure:"ambiguous"`

	// Classifications is the static lookup standing in for a model call,
	// keyed by the exact (lowercased) ambiguous reason
	Classifications map[string]ReasonAnalysis `yaml:"classifications" mapstructure:"classifications"`

	HighSuccessProcedures []string `yaml:"high_success_procedures" mapstructure:"high_success_procedures"`

	PositiveKeywords []string `yaml:"positive_keywords" mapstructure:"positive_keywords"`
	NegativeKeywords []string `yaml:"negative_keywords" mapstructure:"negative_keywords"`
}

// ScoringConfig holds the additive score weights
type ScoringConfig struct {
	ReasonWeight      float64 `yaml:"reason_weight" mapstructure:"reason_weight"`
	ProcedureBonus    float64 `yaml:"procedure_bonus" mapstructure:"procedure_bonus"`
	PatientIDBonus    float64 `yaml:"patient_id_bonus" mapstructure:"patient_id_bonus"`
	RecencyBonus      float64 `yaml:"recency_bonus" mapstructure:"recency_bonus"`
	RecencyWindowDays int     `yaml:"recency_window_days" mapstructure:"recency_window_days"`
}

// EligibilityConfig holds the hard-gate parameters
type EligibilityConfig struct {
	// ReferenceDate pins the 7-day recency gate (YYYY-MM-DD). The score's
	// 30-day bonus deliberately keeps using wall-clock time instead.
	ReferenceDate string `yaml:"reference_date" mapstructure:"reference_date"`
	MinAgeDays    int    `yaml:"min_age_days" mapstructure:"min_age_days"`
}

// ClassifierConfig selects the ambiguous-reason classifier implementation
type ClassifierConfig struct {
	// Provider name: "static" (lookup table) or "openai"
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds

	// Memoization of per-reason verdicts
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`

	// Token bucket for remote providers
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr              string  `yaml:"addr" mapstructure:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Sample inputs served by GET /metrics when present
	SampleCSV  string `yaml:"sample_csv" mapstructure:"sample_csv"`
	SampleJSON string `yaml:"sample_json" mapstructure:"sample_json"`
}

// OutputConfig holds report destinations
type OutputConfig struct {
	CandidatesPath string `yaml:"candidates_path" mapstructure:"candidates_path"`
	RejectedPath   string `yaml:"rejected_path" mapstructure:"rejected_path"`
}

// LogConfig holds observability settings
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "text"
}

// DefaultConfig returns the built-in rule tables and settings
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Retryable: []string{
				"missing modifier",
				"incorrect npi",
				"prior auth required",
			},
			NonRetryable: []string{
				"authorization expired",
				"incorrect provider type",
			},
			Ambiguous: []string{
				"incorrect procedure",
				"form incomplete",
				"not billable",
			},
			Classifications: map[string]ReasonAnalysis{
				"incorrect procedure": {
					Eligible:   false,
					Confidence: 0.8,
					Reason:     "LLM classified: Incorrect procedure - not retryable",
				},
				"form incomplete": {
					Eligible:   true,
					Confidence: 0.7,
					Reason:     "LLM classified: Form incomplete - can be retried with corrections",
				},
				"not billable": {
					Eligible:   false,
					Confidence: 0.9,
					Reason:     "LLM classified: Not billable - fundamental issue",
				},
			},
			HighSuccessProcedures: []string{"99213", "99214", "99215", "99381", "99401"},
			PositiveKeywords:      []string{"missing", "incorrect", "expired", "required", "incomplete"},
			NegativeKeywords:      []string{"not covered", "duplicate", "invalid", "fraud", "experimental"},
		},
		Scoring: ScoringConfig{
			ReasonWeight:      0.6,
			ProcedureBonus:    0.2,
			PatientIDBonus:    0.1,
			RecencyBonus:      0.1,
			RecencyWindowDays: 30,
		},
		Eligibility: EligibilityConfig{
			ReferenceDate: "2025-07-30",
			MinAgeDays:    7,
		},
		Classifier: ClassifierConfig{
			Provider:          "static",
			Timeout:           30,
			CacheTTL:          15 * time.Minute,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerSecond: 10,
			Burst:             20,
			SampleCSV:         "emr_alpha.csv",
			SampleJSON:        "emr_beta.json",
		},
		Output: OutputConfig{
			CandidatesPath: "resubmission_candidates.json",
			RejectedPath:   "rejected_claims.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ParsedReferenceDate parses the pinned gate date, falling back to the
// built-in default on malformed input
func (c EligibilityConfig) ParsedReferenceDate() time.Time {
	if t, err := time.Parse("2006-01-02", c.ReferenceDate); err == nil {
		return t
	}
	return time.Date(2025, time.July, 30, 0, 0, 0, 0, time.UTC)
}
