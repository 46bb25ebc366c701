package admin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BCRYPT_COST", "4")
}

func TestSeed_Memory(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, seedCmd(), "--username", "alice", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user alice.")
}

func TestSeed_RefusesInProd(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("STORAGE", "postgres")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, seedCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, migrateCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE=postgres")
}

func TestSessionsPrune_Memory(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, sessionsCmd(), "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 expired session(s).")
}

func TestAuditList(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, auditCmd(), "list", "--limit", "10")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "No audit entries."), out)

	_, err = execute(t, auditCmd(), "list", "--limit", "0")
	require.Error(t, err)
}
