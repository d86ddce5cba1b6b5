package codeshift

import "time"

// Mode controls when the engine consults the model.
type Mode string

const (
	// ModeAdaptive calls the model only while confidence in the rules is below the threshold.
	ModeAdaptive Mode = "adaptive"
	// ModeAlwaysModel calls the model on every cache miss.
	ModeAlwaysModel Mode = "always-model"
	// ModeManualOnly uses the rule tables only and bypasses learning entirely.
	ModeManualOnly Mode = "manual-only"
	// ModeDisabled never calls the model but still records rule outcomes.
	ModeDisabled Mode = "disabled"
)

// Modes lists every valid operation mode.
var Modes = []Mode{ModeAdaptive, ModeAlwaysModel, ModeManualOnly, ModeDisabled}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Tunable defaults of the policy engine.
const (
	// DefaultConfidenceThreshold is the confidence below which adaptive mode asks the model.
	DefaultConfidenceThreshold = 0.8
	// DefaultSimilarityThreshold is the similarity above which the rule result wins reconciliation.
	DefaultSimilarityThreshold = 0.8
	// InitialConfidence is the prior used before any conversion was recorded.
	InitialConfidence = 0.3
)

// Request is a single conversion request. It is treated as immutable.
type Request struct {
	Source string
	From   Language
	To     Language
}

// Source identifies which path produced a result.
type Source string

const (
	// SourceIdentity means source and target language were equal.
	SourceIdentity Source = "identity"
	// SourceCache means a learned pattern was returned.
	SourceCache Source = "cache"
	// SourceRules means the rule result was trusted without consulting the model.
	SourceRules Source = "rules"
	// SourceRulesVerified means the model agreed with the rule result.
	SourceRulesVerified Source = "rules-verified"
	// SourceModel means the model result replaced the rule result.
	SourceModel Source = "model"
	// SourceFallback means the model failed and the rule result was used.
	SourceFallback Source = "fallback"
)

// Result is the outcome of a conversion.
type Result struct {
	Content     string       // Converted code
	Status      string       // Human-readable trust message for display
	Source      Source       // Which path produced Content
	Key         string       // Pattern key of the request (empty for identity and manual-only)
	Similarity  float64      // Rule/model similarity when both ran
	Confidence  float64      // Confidence after this conversion
	Differences []Difference // Advisory differences found during reconciliation
}

// Settings is the runtime-mutable configuration surface of the engine.
type Settings struct {
	Mode                Mode    `json:"mode"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
	Model               string  `json:"model"`
	BaseURL             string  `json:"baseUrl"`
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged,
// so a zero threshold can be set explicitly.
type SettingsPatch struct {
	Mode                *Mode    `json:"mode"`
	ConfidenceThreshold *float64 `json:"confidenceThreshold"`
	Model               *string  `json:"model"`
	BaseURL             *string  `json:"baseUrl"`
}

// DefaultSettings returns the settings a fresh engine starts with.
func DefaultSettings() Settings {
	return Settings{
		Mode:                ModeAdaptive,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Model:               DefaultModel,
		BaseURL:             DefaultBaseURL,
	}
}

// Defaults for the model endpoint.
const (
	DefaultModel   = "llama3.2:latest"
	DefaultBaseURL = "http://localhost:11434"
)

// DefaultModels is offered when the endpoint reports no installed models.
var DefaultModels = []string{
	"codellama:7b",
	"codellama:13b",
	"codellama:34b",
	"deepseek-coder:6.7b",
	"deepseek-coder:33b",
	"codegemma:7b",
	"llama3:8b",
	"llama3:70b",
}

// Stats holds the running reconciliation statistics.
type Stats struct {
	TotalConversions  int     `json:"totalConversions"`
	ManualSuccesses   int     `json:"manualSuccesses"`
	AICorrections     int     `json:"aiCorrections"`
	CurrentConfidence float64 `json:"currentConfidence"`
}

// HistoryEntry records a reconciliation where the model corrected the rules.
type HistoryEntry struct {
	ID          string       `json:"id"`
	Key         string       `json:"key"`
	Source      string       `json:"source"`
	From        Language     `json:"fromLang"`
	To          Language     `json:"toLang"`
	RuleResult  string       `json:"manualResult"`
	ModelResult string       `json:"aiResult"`
	Differences []Difference `json:"differences"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Snapshot is the persisted state of an engine.
type Snapshot struct {
	Stats    *Stats         `json:"stats,omitempty"`
	Patterns [][2]string    `json:"patterns"`
	History  []HistoryEntry `json:"history"`
	Settings *Settings      `json:"settings,omitempty"`
}

// ModelInfo describes a model installed on the inference endpoint.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}
