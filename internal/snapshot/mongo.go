package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/pkg/model"
)

// MongoStore keeps one collection per (channel, country) pair and rewrites it
// in full on every refresh.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongo(ctx context.Context, uri, dbName string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// ReplaceCollection drops the previous snapshot and inserts the new one.
// Called only with a complete, non-empty batch, so a stale snapshot survives
// any failed refresh instead of being emptied out.
func (s *MongoStore) ReplaceCollection(ctx context.Context, name string, products []model.Product) error {
	coll := s.db.Collection(name)

	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		s.logger.Error("store.mongo.delete_failed",
			zap.String("collection", name), zap.Error(err))
		return fmt.Errorf("clear collection %s: %w", name, err)
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, p)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		s.logger.Error("store.mongo.insert_failed",
			zap.String("collection", name), zap.Error(err))
		return fmt.Errorf("insert into %s: %w", name, err)
	}

	metrics.SnapshotProducts.WithLabelValues(name).Set(float64(len(products)))
	return nil
}

func (s *MongoStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
