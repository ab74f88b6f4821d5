package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.False(t, c.HasEndpoint())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
listen: ":9090"
workers: 2
supersede_refresh: false
endpoint:
  host: storage.example.com
  token: secret
  timeout: 5s
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Listen)
	assert.Equal(t, 2, c.Workers)
	assert.False(t, c.SupersedeRefresh)
	assert.True(t, c.Placeholder, "unset keys keep their defaults")
	assert.Equal(t, 100, c.TaskHistory)
	assert.True(t, c.HasEndpoint())

	e := c.RemoteEndpoint()
	assert.Equal(t, "storage.example.com", e.Name)
	assert.Equal(t, "https://storage.example.com:443", e.BaseURL())
	assert.Equal(t, 5*time.Second, e.Timeout)
	assert.Equal(t, "", c.Endpoint.Scheme, "RemoteEndpoint does not modify the config")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "listen: [unclosed"},
		{"zero workers", "workers: 0"},
		{"negative history", "task_history: -1"},
		{"bad scheme", "endpoint:\n  host: h\n  scheme: ftp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
