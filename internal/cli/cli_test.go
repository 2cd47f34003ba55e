package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := Execute(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["agent"])
}

func TestAgentPromoteRequiresPostgres(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("SESSION_BACKEND", "memory")

	_, err := execute(t, "agent", "promote", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND=postgres")
}

func TestAgentPromoteNeedsUsername(t *testing.T) {
	_, err := execute(t, "agent", "promote")
	assert.Error(t, err)
}

func TestMigrateUpRequiresDSN(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("POSTGRES_DSN", "")

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestInvalidBackendFailsConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_BACKEND", "cassandra")

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}
