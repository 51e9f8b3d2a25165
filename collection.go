package mongokit

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is a pure delegation surface over a driver collection. Every
// method passes its arguments and the driver's result through unchanged; the
// only behavior this layer adds is failing fast with ErrConnClosed once the
// owning Conn has been closed.
type Collection struct {
	conn *Conn
	coll *mongo.Collection
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.coll.Name() }

// Unwrap exposes the underlying driver collection for operations this
// surface does not cover.
func (c *Collection) Unwrap() *mongo.Collection { return c.coll }

// InsertOne inserts a single document.
func (c *Collection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.InsertOne(ctx, document, opts...)
}

// InsertMany inserts a slice of documents.
func (c *Collection) InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.InsertMany(ctx, documents, opts...)
}

// FindOne returns at most one document matching the filter.
func (c *Collection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	if err := c.conn.guard(); err != nil {
		// A non-nil placeholder document is required; the constructor treats
		// a nil document as its own error and would mask ErrConnClosed.
		return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	return c.coll.FindOne(ctx, filter, opts...)
}

// Find returns the driver's lazy cursor over all documents matching the
// filter. The cursor is handed back untouched; the caller owns closing it.
func (c *Collection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.Find(ctx, filter, opts...)
}

// UpdateOne applies an update to the first document matching the filter.
func (c *Collection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

// UpdateMany applies an update to every document matching the filter.
func (c *Collection) UpdateMany(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.UpdateMany(ctx, filter, update, opts...)
}

// ReplaceOne replaces the first document matching the filter.
func (c *Collection) ReplaceOne(ctx context.Context, filter, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.ReplaceOne(ctx, filter, replacement, opts...)
}

// DeleteOne removes the first document matching the filter.
func (c *Collection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.DeleteOne(ctx, filter, opts...)
}

// DeleteMany removes every document matching the filter.
func (c *Collection) DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.DeleteMany(ctx, filter, opts...)
}

// CountDocuments counts the documents matching the filter.
func (c *Collection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	if err := c.conn.guard(); err != nil {
		return 0, err
	}
	return c.coll.CountDocuments(ctx, filter, opts...)
}

// Aggregate runs an aggregation pipeline and returns the driver's cursor.
func (c *Collection) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error) {
	if err := c.conn.guard(); err != nil {
		return nil, err
	}
	return c.coll.Aggregate(ctx, pipeline, opts...)
}

// CreateIndex creates a single index from the given key document.
func (c *Collection) CreateIndex(ctx context.Context, keys any, unique bool) (string, error) {
	if err := c.conn.guard(); err != nil {
		return "", err
	}

	model := mongo.IndexModel{Keys: keys}
	if unique {
		model.Options = options.Index().SetUnique(true)
	}

	return c.coll.Indexes().CreateOne(ctx, model)
}

// Indexes exposes the driver's index view for the collection.
func (c *Collection) Indexes() (mongo.IndexView, error) {
	if err := c.conn.guard(); err != nil {
		return mongo.IndexView{}, err
	}
	return c.coll.Indexes(), nil
}

// Drop drops the collection.
func (c *Collection) Drop(ctx context.Context) error {
	if err := c.conn.guard(); err != nil {
		return err
	}
	return c.coll.Drop(ctx)
}
