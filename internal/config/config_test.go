package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 2, cfg.Search.Distance)
	assert.Equal(t, 50, cfg.Search.SnippetRadius)
	assert.Equal(t, DefaultMaxFileSize, cfg.Build.MaxFileSize)
	assert.NotEmpty(t, cfg.DataDir)
	require.NoError(t, cfg.Validate())
}

func TestMergeFile_OverlaysValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  limit: 25
  distance: 1
viewer:
  command: "zathura --page={page} {path}"
`), 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.mergeFile(path))

	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 1, cfg.Search.Distance)
	// Untouched keys keep defaults.
	assert.Equal(t, 50, cfg.Search.SnippetRadius)
	assert.Equal(t, "zathura --page={page} {path}", cfg.Viewer.Command)
}

func TestMergeFile_MissingFileIsFine(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.mergeFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestMergeFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: ["), 0o644))

	cfg := NewConfig()
	assert.Error(t, cfg.mergeFile(path))
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("TOME_DATA_DIR", "/tmp/elsewhere")
	t.Setenv("TOME_SEARCH_LIMIT", "7")
	t.Setenv("TOME_FUZZY_DISTANCE", "3")
	t.Setenv("TOME_BUILD_WORKERS", "junk")

	cfg := NewConfig()
	cfg.applyEnv()

	assert.Equal(t, "/tmp/elsewhere", cfg.DataDir)
	assert.Equal(t, 7, cfg.Search.Limit)
	assert.Equal(t, 3, cfg.Search.Distance)
	// Unparsable values are ignored.
	assert.Equal(t, 0, cfg.Build.Workers)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero limit", func(c *Config) { c.Search.Limit = 0 }},
		{"negative distance", func(c *Config) { c.Search.Distance = -1 }},
		{"zero radius", func(c *Config) { c.Search.SnippetRadius = 0 }},
		{"negative workers", func(c *Config) { c.Build.Workers = -2 }},
		{"zero max size", func(c *Config) { c.Build.MaxFileSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := NewConfig()
	cfg.Build.Workers = 4
	assert.Equal(t, 4, cfg.EffectiveWorkers())

	cfg.Build.Workers = 0
	assert.Greater(t, cfg.EffectiveWorkers(), 0)
}

func TestPaths(t *testing.T) {
	cfg := NewConfig()
	cfg.DataDir = "/data/tome"
	assert.Equal(t, filepath.Join("/data/tome", "indices"), cfg.IndicesDir())
	assert.Equal(t, filepath.Join("/data/tome", "indices.yaml"), cfg.RegistryPath())
}
