package agent

import (
	"context"
	"errors"

	"marlang/models"
)

var (
	// ErrAgentNotFound is returned by AgentStore.GetAgent when the document is absent.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrRateLimited marks an upstream rate-limit or quota signal. The image
	// loop stops early when it sees it.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmptyResponse is returned by generators that got no usable output.
	ErrEmptyResponse = errors.New("empty response")
)

// AgentStore reads the agent document and applies partial updates to it.
// Field paths in MergeUpdateAgent are dotted ("scheduledPosting.lastRun").
type AgentStore interface {
	GetAgent(ctx context.Context, id string) (*models.AgentConfig, error)
	MergeUpdateAgent(ctx context.Context, id string, fields map[string]any) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) (string, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// AILogStore records LLM calls for monitoring. Optional.
type AILogStore interface {
	InsertAILog(ctx context.Context, log models.AILog) error
}

type TextOptions struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Schema          ResponseSchema
}

type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

type TextResult struct {
	Text         string
	ModelVersion string
	Usage        TokenUsage
}

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts TextOptions) (*TextResult, error)
}

type ImageOptions struct {
	Model string
	Count int
}

type Image struct {
	Data     []byte
	MIMEType string
}

type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, opts ImageOptions) ([]Image, error)
}

// ObjectStorage stores bytes under key and returns a URL the blog can render.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, key, mimeType string) (string, error)
}

// Pacer gates each image call. allowed=false means the quota is exhausted.
type Pacer interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

// HeadlineSource supplies short "things noticed today" lines for the prompt.
type HeadlineSource interface {
	Headlines(ctx context.Context) ([]string, error)
}

// PostNotifier announces a persisted post to downstream consumers.
type PostNotifier interface {
	NotifyPostGenerated(ctx context.Context, post *models.Post) error
}
