package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredVars = []string{
	"APP_ENV", "APP_PORT", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME",
	"JWT_SECRET", "ACCESS_TOKEN_TTL_MIN", "REFRESH_TOKEN_TTL_DAYS", "BCRYPT_COST",
}

// unsetRequired removes the required variables for the test's duration.
func unsetRequired(t *testing.T) {
	t.Helper()
	for _, k := range requiredVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "worker"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("env-file"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("migrate"))
}

func TestMissingConfigIsReported(t *testing.T) {
	unsetRequired(t)
	root := NewRootCommand()
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env"), "migrate"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestEnvFileIsLoaded(t *testing.T) {
	unsetRequired(t)
	env := strings.Join([]string{
		"APP_ENV=test", "APP_PORT=0", "DB_USER=u", "DB_HOST=127.0.0.1", "DB_PORT=1", "DB_NAME=n",
		"JWT_SECRET=s", "ACCESS_TOKEN_TTL_MIN=15", "REFRESH_TOKEN_TTL_DAYS=7", "BCRYPT_COST=4",
	}, "\n")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(env), 0o600))

	root := NewRootCommand()
	root.SetArgs([]string{"--env-file", path, "--log-level", "error", "migrate"})
	err := root.Execute()
	require.Error(t, err, "nothing listens on port 1")
	assert.NotContains(t, err.Error(), "missing required env var")
}

func TestMalformedEnvFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A LINE\n"), 0o600))
	root := NewRootCommand()
	root.SetArgs([]string{"--env-file", path, "migrate"})
	assert.Error(t, root.Execute())
}
