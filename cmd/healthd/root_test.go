package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Version(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"version"})

	var out bytes.Buffer
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), serviceName)
	assert.Contains(t, out.String(), serviceVersion)
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "reload", "silence", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
