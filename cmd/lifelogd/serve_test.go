package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifelogd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  production: true\n"), 0o600))

	err := runServe(context.Background(), serveOptions{ConfigFile: path})
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestServeStopsWithContext(t *testing.T) {
	t.Setenv("LIFELOG_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServe(ctx, serveOptions{Listen: "127.0.0.1:0", LogLevel: "error"})
	assert.NoError(t, err)
}

func TestRootHasServe(t *testing.T) {
	cmd, _, err := rootCmd().Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}
