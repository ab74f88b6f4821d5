package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "workbench dev (commit: none, built: unknown)\n", out)
}

func TestListDemo(t *testing.T) {
	out, err := run(t, "list", "--demo")
	require.NoError(t, err)

	assert.Contains(t, out, "DELETABLE")
	assert.Contains(t, out, "static.example.com")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "E1K4QX7Z3PLN8A") {
			assert.Regexp(t, `\btrue\b\s*│\s*$`, line, "the disabled deployed distribution is deletable")
		}
	}
}

func TestListWithoutEndpoint(t *testing.T) {
	_, err := run(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no endpoint configured")
}

func TestListFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("demo: false\nworkers: 3\n"), 0o600))

	_, err := run(t, "list", "--config", path, "--demo")
	assert.NoError(t, err)
}

func TestServeRejectsBadWorkers(t *testing.T) {
	_, err := run(t, "serve", "--demo", "--workers=-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}
