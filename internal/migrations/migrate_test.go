package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/munakata1001/mitumorisyo/internal/db"
)

func TestUpCreatesTablesAndIsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	require.NoError(t, Up(ctx, database))
	require.NoError(t, Up(ctx, database))

	for _, table := range []string{"estimates", "templates", "materials"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
