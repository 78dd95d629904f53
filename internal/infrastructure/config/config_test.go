package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passwatch/internal/domain/model"
	"passwatch/internal/infrastructure/filesystem"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(StoreDirEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Store.Dir)
	assert.Equal(t, filesystem.DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.False(t, cfg.Watch.SuffixFilter)
	assert.Equal(t, []string{".git"}, cfg.Watch.IgnoreDirs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(StoreDirEnv, dir)
	t.Setenv("PASSWATCH_WATCH_DEBOUNCE", "250ms")
	t.Setenv("PASSWATCH_WATCH_SUFFIX_FILTER", "true")
	t.Setenv("PASSWATCH_WATCH_IGNORE_DIRS", ".git,.cache")
	t.Setenv("PASSWATCH_LOG_LEVEL", "debug")
	t.Setenv("PASSWATCH_OUTPUT_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Store.Dir)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.SuffixFilter)
	assert.Equal(t, []string{".git", ".cache"}, cfg.Watch.IgnoreDirs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(StoreDirEnv, "")
	path := filepath.Join(t.TempDir(), "passwatch.yaml")
	content := []byte("store:\n  dir: /srv/pass\nwatch:\n  debounce: 5s\nlog:\n  format: text\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/pass", cfg.Store.Dir)
	assert.Equal(t, 5*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(StoreDirEnv, dir)
	path := filepath.Join(t.TempDir(), "passwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  dir: /srv/pass\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Store.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{
			name: "負のデバウンス",
			env:  map[string]string{"PASSWATCH_WATCH_DEBOUNCE": "-1s"},
		},
		{
			name: "未知の出力形式",
			env:  map[string]string{"PASSWATCH_OUTPUT_FORMAT": "xml"},
		},
		{
			name: "存在しない設定ファイル",
			file: "/nonexistent/passwatch.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, &model.Error{Code: model.CodeConfiguration})
		})
	}
}
