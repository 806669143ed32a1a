package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"mailsage/internal/repository/repotest"
)

func TestPostgresRepositories(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	repos, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	repotest.Run(t, repos)
}
