package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"marlang/agent"
)

// GeminiClient implements agent.TextGenerator and agent.ImageGenerator on
// the Google Gen AI SDK.
type GeminiClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewGeminiClient(ctx context.Context, apiKey, textModel, imageModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClient{client: client, textModel: textModel, imageModel: imageModel}, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, opts agent.TextOptions) (*agent.TextResult, error) {
	model := opts.Model
	if model == "" {
		model = g.textModel
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	}
	if len(opts.Schema) > 0 {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(opts.Schema)
	}

	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, classify(err)
	}

	text := firstCandidateText(result)
	if strings.TrimSpace(text) == "" {
		return nil, agent.ErrEmptyResponse
	}

	out := &agent.TextResult{Text: text, ModelVersion: result.ModelVersion}
	if u := result.UsageMetadata; u != nil {
		out.Usage = agent.TokenUsage{
			InputTokens:  int64(u.PromptTokenCount),
			OutputTokens: int64(u.CandidatesTokenCount),
			TotalTokens:  int64(u.TotalTokenCount),
		}
	}
	return out, nil
}

func (g *GeminiClient) GenerateImages(ctx context.Context, prompt string, opts agent.ImageOptions) ([]agent.Image, error) {
	model := opts.Model
	if model == "" {
		model = g.imageModel
	}
	n := opts.Count
	if n <= 0 {
		n = 1
	}

	resp, err := g.client.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(n),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil {
		return nil, agent.ErrEmptyResponse
	}

	images := make([]agent.Image, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, agent.Image{Data: gi.Image.ImageBytes, MIMEType: gi.Image.MIMEType})
	}
	if len(images) == 0 {
		return nil, agent.ErrEmptyResponse
	}
	return images, nil
}

// firstCandidateText joins the text parts of the first candidate, skipping
// thought parts.
func firstCandidateText(r *genai.GenerateContentResponse) string {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0] == nil || r.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func toGenaiSchema(s agent.ResponseSchema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s)),
		Required:   s.RequiredNames(),
	}
	order := make([]string, 0, len(s))
	for _, f := range s {
		prop := &genai.Schema{Description: f.Description}
		switch f.Type {
		case agent.FieldStringArray:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
		default:
			prop.Type = genai.TypeString
		}
		out.Properties[f.Name] = prop
		order = append(order, f.Name)
	}
	out.PropertyOrdering = order
	return out
}

// classify maps quota and rate-limit responses to agent.ErrRateLimited.
func classify(err error) error {
	if isRateLimit(err) {
		return fmt.Errorf("%w: %v", agent.ErrRateLimited, err)
	}
	return err
}

func isRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}
