package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTextModel       = "gemini-2.0-flash"
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 2048
	DefaultThumbnailCount  = 1
)

// AgentConfig is the persona document that drives content generation.
// Collection: aiAgents (single document, id "main")
//
// Field names are camelCase in every backend so that dotted merge paths
// (e.g. "scheduledPosting.lastRun") are identical in Mongo and Firestore.
type AgentConfig struct {
	ID                 string              `bson:"_id,omitempty" firestore:"-" json:"id"`
	Name               string              `bson:"name" firestore:"name" json:"name" yaml:"name"`
	Bio                string              `bson:"bio" firestore:"bio" json:"bio" yaml:"bio"`
	Personality        Personality         `bson:"personality" firestore:"personality" json:"personality" yaml:"personality"`
	ModelConfig        ModelConfig         `bson:"modelConfig" firestore:"modelConfig" json:"modelConfig" yaml:"modelConfig"`
	ScheduledPosting   ScheduledPosting    `bson:"scheduledPosting" firestore:"scheduledPosting" json:"scheduledPosting" yaml:"scheduledPosting"`
	ThumbnailGenConfig *ThumbnailGenConfig `bson:"thumbnailGenConfig,omitempty" firestore:"thumbnailGenConfig,omitempty" json:"thumbnailGenConfig,omitempty" yaml:"thumbnailGenConfig,omitempty"`
	UpdatedAt          time.Time           `bson:"updatedAt,omitempty" firestore:"updatedAt,omitempty" json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

type Personality struct {
	Tone         string   `bson:"tone" firestore:"tone" json:"tone" yaml:"tone"`
	Style        string   `bson:"style" firestore:"style" json:"style" yaml:"style"`
	Interests    []string `bson:"interests" firestore:"interests" json:"interests" yaml:"interests"`
	SystemPrompt string   `bson:"systemPrompt" firestore:"systemPrompt" json:"systemPrompt" yaml:"systemPrompt"`
}

// ModelConfig holds generation parameters. Absent values fall back to the
// Default* constants; Temperature is a pointer so an explicit 0 is kept.
type ModelConfig struct {
	Model           string   `bson:"model,omitempty" firestore:"model,omitempty" json:"model,omitempty" yaml:"model,omitempty"`
	Temperature     *float64 `bson:"temperature,omitempty" firestore:"temperature,omitempty" json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxOutputTokens int      `bson:"maxOutputTokens,omitempty" firestore:"maxOutputTokens,omitempty" json:"maxOutputTokens,omitempty" yaml:"maxOutputTokens,omitempty"`
}

func (m ModelConfig) ModelOrDefault() string {
	if m.Model == "" {
		return DefaultTextModel
	}
	return m.Model
}

// TemperatureOrDefault returns the configured temperature clamped to [0,1].
func (m ModelConfig) TemperatureOrDefault() float64 {
	if m.Temperature == nil {
		return DefaultTemperature
	}
	t := *m.Temperature
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func (m ModelConfig) MaxOutputTokensOrDefault() int {
	if m.MaxOutputTokens <= 0 {
		return DefaultMaxOutputTokens
	}
	return m.MaxOutputTokens
}

// ScheduledPosting.Schedule is either an hour-of-day integer (0..23) or a
// legacy cron string such as "0 9 * * *". It is stored untyped because both
// shapes exist in deployed documents.
type ScheduledPosting struct {
	Enabled  bool       `bson:"enabled" firestore:"enabled" json:"enabled" yaml:"enabled"`
	Schedule any        `bson:"schedule,omitempty" firestore:"schedule,omitempty" json:"schedule,omitempty" yaml:"schedule,omitempty"`
	LastRun  *time.Time `bson:"lastRun,omitempty" firestore:"lastRun,omitempty" json:"lastRun,omitempty" yaml:"lastRun,omitempty"`
}

// ScheduledHour resolves Schedule to an hour of day in UTC.
// ok is false when the value is missing or cannot be interpreted.
func (s ScheduledPosting) ScheduledHour() (int, bool) {
	switch v := s.Schedule.(type) {
	case int:
		return validHour(v)
	case int32:
		return validHour(int(v))
	case int64:
		return validHour(int(v))
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return validHour(int(v))
	case string:
		return parseHourSpec(v)
	}
	return 0, false
}

// parseHourSpec accepts "9" or a five-field cron line whose minute is 0 and
// whose hour field is a single number ("0 9 * * *").
func parseHourSpec(spec string) (int, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(spec); err == nil {
		return validHour(n)
	}
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return validHour(n)
}

func validHour(h int) (int, bool) {
	if h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

type ThumbnailGenConfig struct {
	Enabled        bool   `bson:"enabled" firestore:"enabled" json:"enabled" yaml:"enabled"`
	Style          string `bson:"style" firestore:"style" json:"style" yaml:"style"`
	Count          int    `bson:"count" firestore:"count" json:"count" yaml:"count"`
	PromptTemplate string `bson:"promptTemplate" firestore:"promptTemplate" json:"promptTemplate" yaml:"promptTemplate"`
	Model          string `bson:"model,omitempty" firestore:"model,omitempty" json:"model,omitempty" yaml:"model,omitempty"`
}

func (t *ThumbnailGenConfig) IsEnabled() bool {
	return t != nil && t.Enabled
}

func (t *ThumbnailGenConfig) CountOrDefault() int {
	if t == nil || t.Count <= 0 {
		return DefaultThumbnailCount
	}
	return t.Count
}

// DefaultAgentConfig is the persona written by "agentctl seed".
func DefaultAgentConfig() AgentConfig {
	temp := DefaultTemperature
	return AgentConfig{
		Name: "Marlang",
		Bio:  "an AI cat that explores the internet",
		Personality: Personality{
			Tone:         "playful",
			Style:        "conversational",
			Interests:    []string{"yarn balls", "space lasers", "javascript hooks"},
			SystemPrompt: "You are Marlang, a white animated AI cat who keeps a diary of small adventures.",
		},
		ModelConfig: ModelConfig{
			Model:           DefaultTextModel,
			Temperature:     &temp,
			MaxOutputTokens: DefaultMaxOutputTokens,
		},
		ScheduledPosting: ScheduledPosting{
			Enabled:  true,
			Schedule: 9,
		},
		ThumbnailGenConfig: &ThumbnailGenConfig{
			Enabled:        true,
			Style:          "Cinematic, high-quality, cat-themed",
			Count:          3,
			PromptTemplate: "Generate a beautiful image of {agent_name} {activity} in {style} style.",
		},
	}
}
