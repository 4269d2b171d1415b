package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amansingh-afk/nanoedge/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint16(1023), cfg.Encoder.MaxValue)
	assert.Equal(t, []string{"adc0"}, cfg.Encoder.Channels)
	assert.Equal(t, 96, cfg.Memory.Threshold)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
encoder:
  max_value: 4095
  seed: 7
  channels: [temp, light, sound]
memory:
  threshold: 110
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(4095), cfg.Encoder.MaxValue)
	assert.Equal(t, uint64(7), cfg.Encoder.Seed)
	assert.Equal(t, []string{"temp", "light", "sound"}, cfg.Encoder.Channels)
	assert.Equal(t, 110, cfg.Memory.Threshold)
	assert.Equal(t, 16, cfg.Memory.Capacity, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":          "encoder: [",
		"zero max":          "encoder:\n  max_value: 0\n",
		"no channels":       "encoder:\n  channels: []\n",
		"duplicate channel": "encoder:\n  channels: [a, a]\n",
		"empty channel":     "encoder:\n  channels: [a, '']\n",
		"threshold high":    "memory:\n  threshold: 129\n",
		"threshold zero":    "memory:\n  threshold: 0\n",
		"capacity zero":     "memory:\n  capacity: 0\n",
		"basis distance":    "encoder:\n  min_basis_distance: 200\n",
		"log format":        "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := config.LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.Default()
	cfg.Encoder.Channels = []string{"x", "y"}
	cfg.Store.Path = "/tmp/p.db"
	require.NoError(t, cfg.Save(path))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestInitConfig_KeepsExisting(t *testing.T) {
	path := writeFile(t, "memory:\n  capacity: 3\n")
	require.NoError(t, config.InitConfig(path))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Memory.Capacity)

	fresh := filepath.Join(t.TempDir(), "fresh.yaml")
	require.NoError(t, config.InitConfig(fresh))
	cfg, err = config.Load(fresh)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
