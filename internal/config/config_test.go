package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/prompt-builder/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMigrateSelection(t *testing.T) {
	tests := []struct {
		selection string
		want      string
	}{
		{"premium", core.PremiumModelID},
		{"free", core.FreeModelID},
		{"anything-else", core.FreeModelID},
	}
	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrateSelection(tt.selection))
		})
	}
}

func TestLoadLegacyJSONMigratesAndWritesBack(t *testing.T) {
	path := writeFile(t, "config.json", `{"apiKey":"k","modelSelection":"premium"}`)

	cfg, migrated, err := Load(path)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, core.APIConfig{APIKey: "k", Model: core.PremiumModelID}, cfg.APIConfig())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "modelSelection")
	assert.Contains(t, string(data), core.PremiumModelID)

	again, migrated, err := Load(path)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, cfg, again)
}

func TestLoadLegacyOtherSelection(t *testing.T) {
	path := writeFile(t, "config.yaml", "apiKey: k\nmodelSelection: gratuit\n")
	cfg, migrated, err := Load(path)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, core.FreeModelID, cfg.Model)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "apiKey: sk-or\nmodel: anthropic/claude-3.5-haiku\nrequestsPerMinute: 20\n")
	cfg, migrated, err := Load(path)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, "sk-or", cfg.APIKey)
	assert.Equal(t, "anthropic/claude-3.5-haiku", cfg.Model)
	assert.Equal(t, 20, cfg.RequestsPerMinute)
	assert.Equal(t, Default().BaseURL, cfg.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	assert.True(t, IsFirstRun(path))

	cfg, migrated, err := Load(path)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "apiKey: [unterminated\n")
	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Config{APIKey: "k", Model: "m", Provider: "anthropic", MaxImageWidth: 512}
	require.NoError(t, Save(path, want))
	assert.False(t, IsFirstRun(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", got.Provider)
	assert.Equal(t, 512, got.MaxImageWidth)
	assert.Equal(t, "k", got.APIKey)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvModel, "")

	cfg := Config{APIKey: "from-file", Model: "file-model"}
	cfg.ApplyEnv()
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "file-model", cfg.Model)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", EnvModel+"=dotenv-model\n")
	t.Setenv(EnvModel, "")
	require.NoError(t, os.Unsetenv(EnvModel))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "dotenv-model", os.Getenv(EnvModel))
}

func TestValidateAndRedaction(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "sk-secret"
	assert.NoError(t, cfg.Validate())
	assert.NotContains(t, cfg.String(), "sk-secret")

	cfg.RequestsPerMinute = -1
	assert.Error(t, cfg.Validate())
}

func TestLLMConfig(t *testing.T) {
	cfg := Config{Provider: "anthropic", MaxImageWidth: 256}
	lc := cfg.LLMConfig()
	assert.Equal(t, "anthropic", lc.Provider)
	assert.Equal(t, 256, lc.MaxImageWidth)
	assert.NotEmpty(t, lc.BaseURL)
}
