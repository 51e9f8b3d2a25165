package mongokit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Conn is a live MongoDB session bound to a single database. It owns the
// underlying driver client exclusively for its lifetime: Close releases the
// client, and every operation after Close fails with ErrConnClosed.
//
// Conn adds no coordination on top of the driver; concurrent use is as safe
// as the driver's own guarantees.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// Client exposes the underlying driver client.
func (c *Conn) Client() *mongo.Client { return c.client }

// Database returns the bound driver database handle.
func (c *Conn) Database() *mongo.Database { return c.db }

// Name returns the bound database name.
func (c *Conn) Name() string { return c.db.Name() }

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed.Load() }

// Collection returns a delegating accessor for the named collection.
func (c *Conn) Collection(name string) *Collection {
	return &Collection{conn: c, coll: c.db.Collection(name)}
}

// Ping verifies the session is still usable.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.client.Ping(ctx, nil)
}

// ListCollectionNames lists the collections of the bound database.
func (c *Conn) ListCollectionNames(ctx context.Context) ([]string, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	return c.db.ListCollectionNames(ctx, bson.D{})
}

// CreateCollection explicitly creates a collection in the bound database.
func (c *Conn) CreateCollection(ctx context.Context, name string, opts ...options.Lister[options.CreateCollectionOptions]) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.db.CreateCollection(ctx, name, opts...)
}

// DropCollection drops a collection from the bound database.
func (c *Conn) DropCollection(ctx context.Context, name string) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.db.Collection(name).Drop(ctx)
}

// Close releases the underlying session. It is safe to call multiple times;
// the session is disconnected exactly once and later calls return nil.
func (c *Conn) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.client.Disconnect(ctx)
		c.log.DebugContext(ctx, "mongodb connection closed", slog.String("database", c.db.Name()))
	})
	return err
}

func (c *Conn) guard() error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	return nil
}
