package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEADSCOPE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3001/api/v1", cfg.API.BaseURL)
	require.Equal(t, 10, cfg.API.TimeoutSeconds)
	require.Equal(t, 20, cfg.UI.PageLimit)
	require.Equal(t, 30, cfg.UI.RefreshSeconds)
	require.Equal(t, "$", cfg.UI.CurrencySymbol)
	require.Equal(t, "Asia/Jakarta", cfg.UI.Timezone)
}

func TestLoadEnvOverrideAndSlashTrim(t *testing.T) {
	t.Setenv("LEADSCOPE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("LEADSCOPE_API_BASE_URL", "http://10.0.0.5:9000/api/v1/")
	t.Setenv("LEADSCOPE_UI_PAGE_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:9000/api/v1", cfg.API.BaseURL)
	require.Equal(t, 50, cfg.UI.PageLimit)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("LEADSCOPE_CONFIG", path)

	in, err := Load()
	require.NoError(t, err)
	in.API.BaseURL = "http://backend.internal/api/v1"
	in.UI.PageLimit = 40
	in.UI.CurrencySymbol = "Rp"
	require.NoError(t, Save(in))

	out, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend.internal/api/v1", out.API.BaseURL)
	require.Equal(t, 40, out.UI.PageLimit)
	require.Equal(t, "Rp", out.UI.CurrencySymbol)
	require.Equal(t, in.API.TimeoutSeconds, out.API.TimeoutSeconds)
}
