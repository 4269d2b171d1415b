package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amansingh-afk/nanoedge/config"
	"github.com/Amansingh-afk/nanoedge/hdc"
)

// run parses args as a command line and returns what the command printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() {
		stdout = os.Stdout
		opts = globalOptions{}
	})
	_, err := newParser().ParseArgs(args)
	return buf.String(), err
}

func writeConfig(t *testing.T, channels ...string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "patterns.db")
	cfg.Log.Level = "error"
	if len(channels) > 0 {
		cfg.Encoder.Channels = channels
	}
	path := filepath.Join(dir, "nanoedge.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func TestParseFrames(t *testing.T) {
	frames, err := parseFrames([]string{"1", "2", "/", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, [][]uint16{{1, 2}, {3, 4}}, frames)

	frames, err = parseFrames([]string{"65535"})
	require.NoError(t, err)
	assert.Equal(t, [][]uint16{{65535}}, frames)
}

func TestParseFrames_Errors(t *testing.T) {
	cases := map[string][]string{
		"none":         nil,
		"not a number": {"abc"},
		"negative":     {"-1"},
		"overflow":     {"65536"},
		"empty frame":  {"1", "/", "/", "2"},
		"trailing sep": {"1", "/"},
		"only sep":     {"/"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseFrames(args)
			assert.Error(t, err)
		})
	}
}

func TestEncode(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "--config", path, "encode", "1023")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	bits, err := hdc.Parse(lines[0])
	require.NoError(t, err)
	var fromHex hdc.Vector
	require.NoError(t, fromHex.UnmarshalText([]byte(lines[1])))
	assert.Equal(t, bits, fromHex)
}

func TestEncode_Bounded(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "encode", "--min=-100", "--max=100", "100")
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("f", 2*hdc.Bytes))

	_, err = run(t, "--config", writeConfig(t), "encode", "--min=5", "1")
	assert.Error(t, err)
	_, err = run(t, "--config", writeConfig(t), "encode", "--min=5", "--max=5", "1")
	assert.Error(t, err)
}

func TestEncode_ChannelMismatch(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t, "a", "b"), "encode", "1")
	assert.Error(t, err)
}

func TestLearnClassifyForget(t *testing.T) {
	path := writeConfig(t, "temp", "light")

	_, err := run(t, "--config", path, "learn", "--label", "day", "400", "900")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "learn", "--label", "night", "300", "40")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "classify", "410", "890")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "day similarity="), out)

	out, err = run(t, "--config", path, "labels")
	require.NoError(t, err)
	assert.Contains(t, out, "day\tcount=1")
	assert.Contains(t, out, "night\tcount=1")

	_, err = run(t, "--config", path, "forget", "night")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "forget", "night")
	assert.Error(t, err)

	out, err = run(t, "--config", path, "labels")
	require.NoError(t, err)
	assert.NotContains(t, out, "night")
}

func TestClassify_NoMatch(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "--config", path, "classify", "500")
	require.NoError(t, err)
	assert.Equal(t, "no match\n", out)
}

func TestDistance(t *testing.T) {
	zero := strings.Repeat("0", 2*hdc.Bytes)
	ones := strings.Repeat("f", 2*hdc.Bytes)
	out, err := run(t, "distance", zero, ones)
	require.NoError(t, err)
	assert.Equal(t, "hamming=128 similarity=0\n", out)

	_, err = run(t, "distance", zero, "xyz")
	assert.Error(t, err)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "nanoedge.yaml")
	_, err := run(t, "--config", path, "init-config")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)

	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.IsLevelEnabled(logrus.DebugLevel))
}
