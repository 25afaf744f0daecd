// Package testutil starts throwaway MongoDB, Redis and Postgres containers
// for integration tests. Every helper skips the calling test under -short or
// when no container runtime is reachable.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pablogoliveira/personia-hub/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// StartMongo starts a MongoDB container and returns a database handle
// dropped on cleanup
func StartMongo(t *testing.T) *mongo.Database {
	t.Helper()
	skipUnlessIntegration(t)
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7.0")
	require.NoError(t, err, "Failed to start MongoDB container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(pingCtx, nil), "Failed to ping MongoDB")

	return client.Database("personia_test")
}

// StartRedis starts a Redis container and returns a traced client
func StartRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	skipUnlessIntegration(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err, "Failed to parse Redis URL")

	raw := redis.NewClient(opts)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, raw.Ping(ctx).Err(), "Failed to ping Redis")

	return redisclient.NewClient(raw)
}

// StartPostgres starts a Postgres container and returns a connection pool
func StartPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	skipUnlessIntegration(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("personia_test"),
		postgres.WithUsername("personia"),
		postgres.WithPassword("personia"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start Postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get Postgres connection string")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "Failed to create Postgres pool")
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx), "Failed to ping Postgres")

	return pool
}
