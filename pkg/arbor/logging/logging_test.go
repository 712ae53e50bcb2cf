package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"bogus", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.log")

	err := Init(Config{Level: "debug", Path: path})
	require.NoError(t, err)
	defer func() { _ = Close() }()

	logger := Get("walker")
	require.NotNil(t, logger)
	logger.Info("walk started", "path", "/tmp")

	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "walk started")
	assert.Contains(t, string(data), "walker")
}

func TestGetWithoutSinkIsSilent(t *testing.T) {
	require.NoError(t, Close())
	logger := Get("quiet-component")
	require.NotNil(t, logger)
	// Must not panic; output goes to io.Discard.
	logger.Error("dropped")
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.log")

	err := Init(Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"ignore": "error"},
	})
	require.NoError(t, err)
	defer func() { _ = Close() }()

	Get("ignore").Info("suppressed message")
	Get("ignore").Error("surfaced message")

	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed message")
	assert.Contains(t, string(data), "surfaced message")
}

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
