//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/tiffin-storefront/internal/storage"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))

	tab1 := NewStore(pool, "https://shop.example")
	tab2 := NewStore(pool, "https://other.example")

	require.NoError(t, tab1.Ping(ctx))

	_, err = tab1.Get(ctx, "redux_cart")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, tab1.Set(ctx, "redux_cart", []byte(`[]`)))
	require.NoError(t, tab1.Set(ctx, "redux_cart", []byte(`[{"id":"1","quantity":1}]`)))

	got, err := tab1.Get(ctx, "redux_cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","quantity":1}]`, string(got))

	_, err = tab2.Get(ctx, "redux_cart")
	require.ErrorIs(t, err, storage.ErrNotFound, "scopes must not share keys")

	require.NoError(t, tab1.Delete(ctx, "redux_cart"))
	_, err = tab1.Get(ctx, "redux_cart")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
