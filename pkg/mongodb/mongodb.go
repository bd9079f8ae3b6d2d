package mongodb

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
)

const defaultDatabase = "test"

var ErrNoURI = errors.New("MONGODB_URI environment variable not defined")

type Config struct {
	URI      string `yaml:"uri" envconfig:"MONGODB_URI"`
	Database string `yaml:"database" envconfig:"MONGODB_DATABASE"`
}

// Client owns a single shared connection. Connect is idempotent: once the
// client is ready further calls return immediately.
type Client struct {
	cfg Config
	log *zap.Logger

	mu     sync.Mutex
	ready  bool
	client *mongo.Client
	dbName string
}

func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log.Named("mongo"),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}
	if c.cfg.URI == "" {
		return ErrNoURI
	}

	dbName, err := databaseName(c.cfg)
	if err != nil {
		return err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.cfg.URI))
	if err != nil {
		return errors.Wrap(err, "mongo.Connect")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return errors.Wrap(err, "mongo ping")
	}

	c.client = client
	c.dbName = dbName
	c.ready = true
	c.log.Info("connected", zap.String("database", dbName))
	return nil
}

func (c *Client) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Database connects on first use and returns the configured database.
func (c *Client) Database(ctx context.Context) (*mongo.Database, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Database(c.dbName), nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.ready = false
	return err
}

func databaseName(cfg Config) (string, error) {
	if cfg.Database != "" {
		return cfg.Database, nil
	}
	cs, err := connstring.ParseAndValidate(cfg.URI)
	if err != nil {
		return "", errors.Wrap(err, "parse MONGODB_URI")
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return defaultDatabase, nil
}
