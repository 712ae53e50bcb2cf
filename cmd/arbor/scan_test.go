package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/arbor/pkg/arbor/config"
)

func TestBuildFilters(t *testing.T) {
	cfg := &config.Config{}
	cfg.View.MinSize = "1K"
	cfg.View.Depth = 2
	cfg.View.Pattern = `\.go$`
	cfg.View.KeepDirs = true

	filters, err := buildFilters(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1024), filters.MinSize)
	assert.Equal(t, 2, filters.MaxDepth)
	assert.True(t, filters.KeepDirs)
	require.NotNil(t, filters.Pattern)
	assert.True(t, filters.Pattern.MatchString("main.go"))
	assert.False(t, filters.Pattern.MatchString("main.rs"))
}

func TestBuildFiltersRejectsBadInput(t *testing.T) {
	cfg := &config.Config{}
	cfg.View.MinSize = "a lot"
	_, err := buildFilters(cfg)
	assert.ErrorContains(t, err, "invalid minimum size")

	cfg = &config.Config{}
	cfg.View.Pattern = "(["
	_, err = buildFilters(cfg)
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestBuildFiltersEmptyConfig(t *testing.T) {
	filters, err := buildFilters(&config.Config{})
	require.NoError(t, err)
	assert.Zero(t, filters.MinSize)
	assert.Zero(t, filters.MaxDepth)
	assert.Nil(t, filters.Pattern)
}
