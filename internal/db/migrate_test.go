package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, f := range files {
		content, err := fs.ReadFile(migrationsFS, f)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(content), "-- +goose Up"), f)
		assert.True(t, strings.Contains(string(content), "-- +goose Down"), f)
	}
}
