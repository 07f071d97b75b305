package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, silencersFile string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "healthd.yaml")
	content := "health:\n  silencers_file: " + silencersFile + "\nmetrics:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func runSilence(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	configFlag := configPath
	cmd := newSilenceCommand(&configFlag)
	cmd.SetArgs(args)

	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSilenceCLI_AddListRemoveReset(t *testing.T) {
	silencersFile := filepath.Join(t.TempDir(), "silencers.json")
	cfgPath := writeTestConfig(t, silencersFile)

	runSilence(t, cfgPath, "add", "--alarms", "cpu.*", "--hosts", "web*")

	listOut := runSilence(t, cfgPath, "list")
	assert.Contains(t, listOut, `alarms="cpu.*"`)
	assert.Contains(t, listOut, `hosts="web*"`)

	raw, err := os.ReadFile(silencersFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cpu.*")

	runSilence(t, cfgPath, "all", "disable")
	listOut = runSilence(t, cfgPath, "list")
	assert.Contains(t, listOut, "type=DISABLE")
	assert.Contains(t, listOut, "all_alarms=true")

	runSilence(t, cfgPath, "reset")
	listOut = runSilence(t, cfgPath, "list")
	assert.Contains(t, listOut, "type=NONE")
	assert.Contains(t, listOut, "all_alarms=false")
}

func TestSilenceCLI_RemoveUnknownID(t *testing.T) {
	silencersFile := filepath.Join(t.TempDir(), "silencers.json")
	cfgPath := writeTestConfig(t, silencersFile)

	runSilence(t, cfgPath, "add", "--alarms", "cpu.*")

	configFlag := cfgPath
	cmd := newSilenceCommand(&configFlag)
	cmd.SetArgs([]string{"remove", "does-not-exist"})
	err := cmd.Execute()
	assert.Error(t, err)
}
