package database

import (
	"context"
	"fmt"
	"time"

	"github.com/authordata/author-service/internal/config"
	"github.com/authordata/author-service/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Handle is the live connection shared by the process. It is built once at
// startup and only read afterwards.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewHandle wraps an already connected client.
func NewHandle(client *mongo.Client, database string) *Handle {
	return &Handle{client: client, db: client.Database(database)}
}

// Connect makes a single connection attempt to the configured store and
// database. There is no retry; a failed attempt is logged and returned.
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*Handle, error) {
	client, err := ConnectMongo(ctx, cfg.URI, cfg.Timeout)
	if err != nil {
		logger.Errorf("connect to MongoDB database %q failed: %v", cfg.Database, err)
		return nil, err
	}
	logger.Infof("connected to MongoDB database %q", cfg.Database)
	return NewHandle(client, cfg.Database), nil
}

func (h *Handle) Collection(name string) *mongo.Collection { return h.db.Collection(name) }

// Ping reports whether the primary is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}

func (h *Handle) Close(ctx context.Context) error {
	return h.client.Disconnect(ctx)
}
