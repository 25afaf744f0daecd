package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pablogoliveira/personia-hub/internal/logging"
	"github.com/pablogoliveira/personia-hub/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database handle
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client
	// Postgres connection pool
	Postgres *pgxpool.Pool

	stopIndexMaintenance context.CancelFunc
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := ensureIndexes(context.Background()); err != nil {
		logging.Logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}
	startIndexMaintenance()

	logging.Logger.Info("Connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// CloseMongoDB stops index maintenance and disconnects the client
func CloseMongoDB(ctx context.Context) error {
	if stopIndexMaintenance != nil {
		stopIndexMaintenance()
	}
	if MongoDB == nil {
		return nil
	}
	return MongoDB.Client().Disconnect(ctx)
}

// InitRedis initializes the Redis connection. A failed ping is logged, not
// fatal: callers treat the cache as best effort.
func InitRedis(ctx context.Context) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  AppConfig.RedisDialTimeout,
		ReadTimeout:  AppConfig.RedisReadTimeout,
		WriteTimeout: AppConfig.RedisWriteTimeout,
		PoolSize:     AppConfig.RedisPoolSize,
		MinIdleConns: AppConfig.RedisMinIdleConns,
	})

	Redis = redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis",
			zap.String("uri", AppConfig.RedisURI),
			zap.Error(err))
		return
	}

	logging.Logger.Info("connected to Redis",
		zap.String("uri", AppConfig.RedisURI))
}

// InitPostgres opens the pgx pool used by the postgres person store
func InitPostgres(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(AppConfig.PostgresDSN)
	if err != nil {
		return fmt.Errorf("invalid POSTGRES_DSN: %w", err)
	}
	if AppConfig.PostgresMaxConns > 0 {
		poolCfg.MaxConns = int32(AppConfig.PostgresMaxConns)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	Postgres = pool
	logging.Logger.Info("connected to Postgres",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns))
	return nil
}

// maskMongoURI masks credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}

// PersonIndexes are the indexes the person collection relies on. The unique
// cpf and email indexes back the duplicate checks in the service layer.
func PersonIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cpf", Value: 1}},
			Options: options.Index().SetName("cpf_1").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_1").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "nome", Value: 1}},
			Options: options.Index().SetName("nome_1"),
		},
	}
}

// AuditLogIndexes are the indexes of the audit log collection
func AuditLogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "resource_id", Value: 1}},
			Options: options.Index().SetName("resource_id_1"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "resource", Value: 1}},
			Options: options.Index().SetName("action_1_resource_1"),
		},
		{
			// keep audit logs for 1 year
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("timestamp_ttl").SetExpireAfterSeconds(365 * 24 * 60 * 60),
		},
	}
}

// ensureIndexes creates required indexes if they don't exist
func ensureIndexes(ctx context.Context) error {
	logger := logging.Named("database")
	logger.Info("ensuring required indexes exist")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if AppConfig.PersonStore == PersonStoreMongo {
		if err := EnsureCollectionIndexes(ctx, logger, MongoDB.Collection(AppConfig.PersonCollection), PersonIndexes()); err != nil {
			return err
		}
	}

	if AppConfig.AuditLogsEnabled {
		if err := EnsureCollectionIndexes(ctx, logger, MongoDB.Collection(AppConfig.AuditLogsCollection), AuditLogIndexes()); err != nil {
			return err
		}
	}

	logger.Info("all required indexes verified")
	return nil
}

// EnsureCollectionIndexes creates every named index in models that the
// collection does not have yet. Concurrent creation by another instance is
// tolerated.
func EnsureCollectionIndexes(ctx context.Context, logger *zap.Logger, collection *mongo.Collection, models []mongo.IndexModel) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		logger.Error("failed to list indexes", zap.String("collection", collection.Name()), zap.Error(err))
		return err
	}
	defer cursor.Close(ctx)

	existing := make(map[string]bool)
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok {
			existing[name] = true
		}
	}

	created := 0
	for _, model := range models {
		name := ""
		if model.Options != nil && model.Options.Name != nil {
			name = *model.Options.Name
		}
		if name != "" && existing[name] {
			continue
		}

		if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.Info("index already exists (created by another instance)",
					zap.String("collection", collection.Name()),
					zap.String("index", name))
				continue
			}
			logger.Error("failed to create index",
				zap.String("collection", collection.Name()),
				zap.String("index", name),
				zap.Error(err))
			return err
		}
		created++
	}

	if created > 0 {
		logger.Info("created collection indexes",
			zap.String("collection", collection.Name()),
			zap.Int("count", created))
	} else {
		logger.Debug("collection indexes already exist",
			zap.String("collection", collection.Name()))
	}
	return nil
}

// startIndexMaintenance re-checks indexes periodically until CloseMongoDB
func startIndexMaintenance() {
	logger := logging.Named("database")
	if AppConfig.IndexMaintenanceInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopIndexMaintenance = cancel

	go func() {
		ticker := time.NewTicker(AppConfig.IndexMaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ensureIndexes(ctx); err != nil {
					logger.Error("periodic index check failed", zap.Error(err))
				}
			}
		}
	}()

	logger.Info("started index maintenance routine",
		zap.Duration("interval", AppConfig.IndexMaintenanceInterval))
}
