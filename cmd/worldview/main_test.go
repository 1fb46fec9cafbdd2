package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := serveCmd()
	f := cmd.Flags().Lookup("addr")
	require.NotNil(t, f)
	assert.Equal(t, ":3001", f.DefValue)
	assert.NotNil(t, cmd.Flags().ShorthandLookup("c"))
}

func TestServeCmd_MissingKey(t *testing.T) {
	for _, k := range []string{"OPENROUTER_API_KEY", "WORLDVIEW_UPSTREAM_API_KEY"} {
		t.Setenv(k, "")
	}
	cmd := serveCmd()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")
}
