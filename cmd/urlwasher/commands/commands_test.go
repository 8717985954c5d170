package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWashArgs(t *testing.T) {
	out, err := run(t, "", "wash", "see", "https://youtu.be/abc?si=X", "here")
	require.NoError(t, err)
	assert.Equal(t, "see https://youtu.be/abc here\n", out)
}

func TestWashStdin(t *testing.T) {
	text := "lorem\thttps://x.com/sekurak/status/1737942071431073818?s=46&t=eLM_fuufufjf\n\nhttps://example.com/unrelated?x=1 "
	out, err := run(t, text, "wash")
	require.NoError(t, err)
	assert.Equal(t, "lorem\thttps://x.com/sekurak/status/1737942071431073818\n\nhttps://example.com/unrelated?x=1 ", out)
}

func TestWashWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"redirect_policy": {"on.soundcloud.com": "ignore"}}`), 0644))

	// Redirects are ignored, so nothing goes over the network.
	out, err := run(t, "", "--config", path, "wash", "https://on.soundcloud.com/VLwCL?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://on.soundcloud.com/VLwCL\n", out)
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "wash", "x")
	assert.Error(t, err)

	_, err = run(t, "", "--mixer", "not a url", "wash", "x")
	assert.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	out, err := run(t, "", "rules")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "youtu.be [youtu.be]: remove params [si]", lines[0])
	assert.Equal(t, "vm.tiktok.com [vm.tiktok.com]: resolve redirection -> remove all params", lines[3])
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "redirect_policy:")
	assert.Contains(t, out, "on.soundcloud.com: locally")
	assert.NotContains(t, out, "mixer_instance")
}
