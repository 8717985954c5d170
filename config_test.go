package urlwasher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.MixerInstance)
	assert.Equal(t, map[string]RedirectPolicy{
		"vm.tiktok.com":     Locally,
		"on.soundcloud.com": Locally,
	}, cfg.RedirectPolicy)
}

func TestParseConfigYAML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
mixer_instance: https://urldebloater.makin.cc/
redirect_policy:
  vm.tiktok.com: via_mixer
  on.soundcloud.com: ignore
  no such rule: locally
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.MixerInstance)
	assert.Equal(t, PublicMixerInstance, cfg.MixerInstance.String())
	assert.Equal(t, ViaMixer, cfg.policyFor("vm.tiktok.com"))
	assert.Equal(t, Ignore, cfg.policyFor("on.soundcloud.com"))
	assert.Equal(t, Locally, cfg.policyFor("no such rule"))
	assert.Equal(t, Ignore, cfg.policyFor("youtu.be"), "missing rules default to ignore")
}

func TestParseConfigJSON(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"mixer_instance": null, "redirect_policy": {"vm.tiktok.com": "locally"}}`))
	require.NoError(t, err)
	assert.Nil(t, cfg.MixerInstance)
	assert.Equal(t, Locally, cfg.policyFor("vm.tiktok.com"))
}

func TestParseConfigInvalid(t *testing.T) {
	for _, data := range []string{
		`redirect_policy: {vm.tiktok.com: sometimes}`,
		`mixer_instance: not a url`,
		`mixer_instance: ftp://mixer.example.com/`,
		`redirect_policy: [1, 2]`,
	} {
		_, err := ParseConfig([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.RedirectPolicy)
	assert.Nil(t, cfg.MixerInstance)
}

func TestConfigEncodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MixerInstance = mustParse(t, PublicMixerInstance)
	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "vm.tiktok.com: locally")

	decoded, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.RedirectPolicy, decoded.RedirectPolicy)
	assert.Equal(t, cfg.MixerInstance.String(), decoded.MixerInstance.String())
}

func TestRedirectPolicyText(t *testing.T) {
	for _, p := range []RedirectPolicy{Ignore, Locally, ViaMixer} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var decoded RedirectPolicy
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, p, decoded)
		assert.Equal(t, string(text), p.String())
	}
	_, err := RedirectPolicy(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "RedirectPolicy(42)", RedirectPolicy(42).String())
}

func TestLoadConfigFile(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redirect_policy: {vm.tiktok.com: ignore}\n"), 0644))
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, Ignore, cfg.policyFor("vm.tiktok.com"))
}

func TestWatchConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redirect_policy: {}\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan *Config, 10)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfigFile(ctx, path, func(cfg *Config) {
			updates <- cfg
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("redirect_policy: {on.soundcloud.com: via_mixer}\n"), 0644))

	// Truncating and writing can be reported separately, wait for the
	// complete file.
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-updates:
			reloaded = cfg.policyFor("on.soundcloud.com") == ViaMixer
		case <-timeout:
			t.Fatal("config was not reloaded")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
