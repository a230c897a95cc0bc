package generator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"marlang/agent"
)

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(agent.DraftSchema)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"content", "tags", "thumbnailIdeas"}, s.Required)
	assert.Equal(t, []string{"title", "content", "tags", "thumbnailIdeas", "excerpt", "metaDescription"}, s.PropertyOrdering)
	assert.Equal(t, genai.TypeString, s.Properties["title"].Type)
	assert.Equal(t, genai.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
}

func TestClassifyRateLimit(t *testing.T) {
	err := classify(fmt.Errorf("call: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}))
	assert.True(t, errors.Is(err, agent.ErrRateLimited))

	err = classify(genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"})
	assert.False(t, errors.Is(err, agent.ErrRateLimited))

	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, classify(plain))
}

func TestFirstCandidateText(t *testing.T) {
	assert.Equal(t, "", firstCandidateText(nil))
	assert.Equal(t, "", firstCandidateText(&genai.GenerateContentResponse{}))

	r := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking...", Thought: true},
			{Text: `{"content":`},
			{Text: `"x"}`},
		}},
	}}}
	assert.Equal(t, `{"content":"x"}`, firstCandidateText(r))
}
