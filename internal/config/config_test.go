package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".ngc-link.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should use defaults for an empty file", func(t *testing.T) {
		cfg, err := config.Load(viper.New(), writeConfig(t, ""))
		require.NoError(t, err)

		assert.Equal(t, config.DefaultJobs, cfg.Link.Jobs)
		assert.Equal(t, config.DefaultExtensions, cfg.Link.Extensions)
		assert.Equal(t, config.DefaultLanguage, cfg.Link.Language)
		assert.Equal(t, uint64(10_000_000), cfg.Link.MaxFileBytes)
		assert.Empty(t, cfg.Link.OutDir)
		assert.False(t, cfg.Link.SourceMap)
		assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
		assert.Equal(t, config.DefaultLogFormat, cfg.Log.Format)
	})

	t.Run("should read values from the file", func(t *testing.T) {
		path := writeConfig(t, `link:
  out_dir: dist/linked
  extensions: [".js", ".ts"]
  language: typescript
  max_file_size: 512KiB
  jobs: 2
  source_map: true
log:
  level: debug
  format: json
`)
		cfg, err := config.Load(viper.New(), path)
		require.NoError(t, err)

		assert.Equal(t, "dist/linked", cfg.Link.OutDir)
		assert.Equal(t, []string{".js", ".ts"}, cfg.Link.Extensions)
		assert.Equal(t, "typescript", cfg.Link.Language)
		assert.Equal(t, uint64(512*1024), cfg.Link.MaxFileBytes)
		assert.Equal(t, 2, cfg.Link.Jobs)
		assert.True(t, cfg.Link.SourceMap)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		t.Setenv("NGC_LINK_LINK_JOBS", "7")
		cfg, err := config.Load(viper.New(), writeConfig(t, "link:\n  jobs: 2\n"))
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Link.Jobs)
	})

	t.Run("should let explicit settings override the file", func(t *testing.T) {
		v := viper.New()
		v.Set("link.diff", true)
		cfg, err := config.Load(v, writeConfig(t, "link:\n  diff: false\n"))
		require.NoError(t, err)
		assert.True(t, cfg.Link.Diff)
	})

	t.Run("should fail on a missing explicit file", func(t *testing.T) {
		_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("should reject invalid settings", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			want    error
		}{
			{"jobs", "link:\n  jobs: 0\n", config.ErrInvalidJobs},
			{"language", "link:\n  language: coffeescript\n", config.ErrInvalidLanguage},
			{"size", "link:\n  max_file_size: lots\n", config.ErrInvalidFileSize},
			{"extensions", "link:\n  extensions: []\n", config.ErrNoExtensions},
			{"level", "log:\n  level: loud\n", config.ErrInvalidLogLevel},
			{"format", "log:\n  format: xml\n", config.ErrInvalidLogFormat},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := config.Load(viper.New(), writeConfig(t, tt.content))
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestHasExtension(t *testing.T) {
	link := config.LinkConfig{Extensions: []string{".js", ".mjs"}}
	assert.True(t, link.HasExtension("dist/core.mjs"))
	assert.True(t, link.HasExtension("main.js"))
	assert.False(t, link.HasExtension("main.ts"))
	assert.False(t, link.HasExtension("main.js.map"))
}
