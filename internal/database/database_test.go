package database

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/config"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *repositories.GORMStore {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return repositories.NewGORMStore(db)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSeedProducts(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedProducts(ctx, store.Products()))
	products, total, err := store.Products().List(ctx, repositories.ProductFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleProducts)), total)
	assert.Len(t, products, len(sampleProducts))
	for _, p := range products {
		assert.True(t, p.IsAvailable)
		assert.Len(t, p.Images, 1)
	}

	// Seeding twice does not duplicate the catalog.
	require.NoError(t, SeedProducts(ctx, store.Products()))
	_, total, err = store.Products().List(ctx, repositories.ProductFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleProducts)), total)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"storefront.db", "storefront.db?_foreign_keys=1"},
		{"file:x?mode=memory&cache=shared", "file:x?mode=memory&cache=shared&_foreign_keys=1"},
		{"file:x?_foreign_keys=0", "file:x?_foreign_keys=0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.dsn), tt.dsn)
	}
}

func TestOpen_SQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}
