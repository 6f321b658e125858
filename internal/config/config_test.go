package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"XKCD_BASE_URL", "XKCD_EXPLAIN_URL", "XKCD_USER_AGENT", "XKCD_DEBUG"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return filepath.Join(dir, "xkcd")
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	isolate(t)

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Contains(t, used, "default config in memory")
}

func TestLoadMergedPrecedence(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://mirror.example/\ntimeout: 5\nimage_workers: 2\n"), 0644))

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "http://mirror.example", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Timeout)
	assert.Equal(t, 2, cfg.ImageWorkers)
	assert.Equal(t, DefaultExplainURL, cfg.ExplainURL, "unset keys keep defaults")

	t.Setenv("XKCD_BASE_URL", "http://env.example")
	t.Setenv("XKCD_DEBUG", "true")
	cfg, _, err = LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.BaseURL)
	assert.True(t, cfg.Debug)

	cfg, _, err = LoadMerged(Options{BaseURL: "http://flag.example", ImageWorkers: 8})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", cfg.BaseURL)
	assert.Equal(t, 8, cfg.ImageWorkers)

	cfg, used, err = LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, 30, cfg.Timeout)
}

func TestLoadMergedInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("XKCD_DEBUG", "maybe")

	_, _, err := LoadMerged(Options{IgnoreConfig: true})
	assert.Error(t, err)
}

func TestLoadMergedBrokenProfile(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("timeout: [nope"), 0644))

	_, _, err = LoadMerged(Options{})
	assert.ErrorContains(t, err, "failed to load config")
}

func TestProfiles(t *testing.T) {
	root := isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	_, err = InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = CreateEmptyConfig("work")
	require.NoError(t, err)
	_, err = CreateEmptyConfig("work")
	assert.ErrorContains(t, err, "already exists")
	_, err = CreateEmptyConfig("../escape")
	assert.Error(t, err)

	require.NoError(t, SwitchConfig("work"))
	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	require.NoError(t, RenameConfig("work", "home"))
	label, _ = CurrentLabel()
	assert.Equal(t, "home", label)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.Equal(t, "home", list[1].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("home")
	require.NoError(t, err)
	assert.True(t, switched)
	label, _ = CurrentLabel()
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
	_, err = ConfigPathByLabel("home")
	assert.ErrorContains(t, err, "does not exist")
}

func TestAddAndResetConfig(t *testing.T) {
	isolate(t)

	src := filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, os.WriteFile(src, []byte("cbz: true\n"), 0644))
	require.NoError(t, AddConfig("mine", src))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cbz: [x"), 0644))
	assert.Error(t, AddConfig("bad", bad))

	require.NoError(t, SwitchConfig("mine"))
	cfg, _, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.True(t, cfg.CBZ)

	_, err = ResetConfig("mine")
	require.NoError(t, err)
	cfg, _, err = LoadMerged(Options{})
	require.NoError(t, err)
	assert.False(t, cfg.CBZ)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.CBZ = true
	cfg.Print(&buf)

	assert.Contains(t, buf.String(), " -base_url: http://xkcd.com\n")
	assert.Contains(t, buf.String(), " -cbz: true\n")
	assert.NotContains(t, buf.String(), "user_agent")
}
