package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"marlang/memstore"
	"marlang/models"
)

func TestSeedAgent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	written, err := seedAgent(ctx, store, "main", false, now)
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, store.MergeUpdateAgent(ctx, "main", map[string]any{"name": "Custom"}))

	written, err = seedAgent(ctx, store, "main", false, now)
	require.NoError(t, err)
	assert.False(t, written)
	cfg, err := store.GetAgent(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "Custom", cfg.Name)

	written, err = seedAgent(ctx, store, "main", true, now)
	require.NoError(t, err)
	assert.True(t, written)
	cfg, err = store.GetAgent(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "Marlang", cfg.Name)
	assert.True(t, cfg.ScheduledPosting.Enabled)
}

func TestRenderAgent(t *testing.T) {
	cfg := models.DefaultAgentConfig()
	out, err := renderAgent(&cfg)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "Marlang", back["name"])
	sp, ok := back["scheduledPosting"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 9, sp["schedule"])
}
