package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"marlang/models"
)

func TestFlattenPatch(t *testing.T) {
	out := map[string]any{}
	flattenPatch("scheduledPosting", map[string]any{
		"enabled": false,
		"nested":  map[string]any{"deep": 1.0},
		"empty":   map[string]any{},
	}, out)
	flattenPatch("personality.interests", []any{"yarn"}, out)

	want := map[string]any{
		"scheduledPosting.enabled":     false,
		"scheduledPosting.nested.deep": 1.0,
		"scheduledPosting.empty":       map[string]any{},
		"personality.interests":        []any{"yarn"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("flattenPatch mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAgent(t *testing.T) {
	cfg := models.DefaultAgentConfig()
	assert.NoError(t, validateAgent(cfg))

	cfg.ScheduledPosting.Schedule = "every morning"
	assert.ErrorIs(t, validateAgent(cfg), ErrInvalidAgentConfig)

	cfg.ScheduledPosting.Enabled = false
	assert.NoError(t, validateAgent(cfg))

	cfg.Name = "  "
	assert.ErrorIs(t, validateAgent(cfg), ErrInvalidAgentConfig)
}
