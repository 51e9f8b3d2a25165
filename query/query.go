package query

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mongokit"
)

// Builder accumulates filter, projection, sort and paging criteria and
// executes them through a collection's delegation surface. Methods append
// and return the builder for chaining; the zero value matches everything.
type Builder struct {
	filter     bson.D
	projection bson.D
	sort       bson.D
	limit      *int64
	skip       *int64
}

// New returns an empty query builder.
func New() *Builder {
	return &Builder{}
}

// Where adds a filter condition on a field. The value may be a plain value
// for equality or an operator document such as bson.M{"$lt": 30}.
func (b *Builder) Where(field string, value any) *Builder {
	b.filter = append(b.filter, bson.E{Key: field, Value: value})
	return b
}

// Select restricts results to the named fields.
func (b *Builder) Select(fields ...string) *Builder {
	for _, field := range fields {
		b.projection = append(b.projection, bson.E{Key: field, Value: 1})
	}
	return b
}

// Exclude removes the named fields from the results.
func (b *Builder) Exclude(fields ...string) *Builder {
	for _, field := range fields {
		b.projection = append(b.projection, bson.E{Key: field, Value: 0})
	}
	return b
}

// Sort adds sort criteria. A leading '-' marks a field descending:
// Sort("age", "-created_at").
func (b *Builder) Sort(fields ...string) *Builder {
	for _, field := range fields {
		if len(field) > 0 && field[0] == '-' {
			b.sort = append(b.sort, bson.E{Key: field[1:], Value: -1})
		} else {
			b.sort = append(b.sort, bson.E{Key: field, Value: 1})
		}
	}
	return b
}

// Limit caps the number of returned documents.
func (b *Builder) Limit(n int64) *Builder {
	b.limit = &n
	return b
}

// Skip skips the first n matching documents.
func (b *Builder) Skip(n int64) *Builder {
	b.skip = &n
	return b
}

// Query is the assembled form of a Builder, exposed for inspection.
// Limit and Skip are nil when unset.
type Query struct {
	Filter     bson.D
	Projection bson.D
	Sort       bson.D
	Limit      *int64
	Skip       *int64
}

// Build returns the accumulated criteria. The filter is never nil so it can
// be passed to the driver directly.
func (b *Builder) Build() Query {
	filter := b.filter
	if filter == nil {
		filter = bson.D{}
	}
	return Query{
		Filter:     filter,
		Projection: b.projection,
		Sort:       b.sort,
		Limit:      b.limit,
		Skip:       b.skip,
	}
}

// Find executes the query and returns the driver's lazy cursor.
func (b *Builder) Find(ctx context.Context, coll *mongokit.Collection) (*mongo.Cursor, error) {
	q := b.Build()

	opts := options.Find()
	if q.Projection != nil {
		opts.SetProjection(q.Projection)
	}
	if q.Sort != nil {
		opts.SetSort(q.Sort)
	}
	if q.Limit != nil {
		opts.SetLimit(*q.Limit)
	}
	if q.Skip != nil {
		opts.SetSkip(*q.Skip)
	}

	return coll.Find(ctx, q.Filter, opts)
}

// All executes the query and decodes every result into results, which must
// be a pointer to a slice.
func (b *Builder) All(ctx context.Context, coll *mongokit.Collection, results any) error {
	cur, err := b.Find(ctx, coll)
	if err != nil {
		return err
	}
	return cur.All(ctx, results)
}

// FindOne executes the query returning at most one document. Limit is
// ignored; sort, projection and skip apply.
func (b *Builder) FindOne(ctx context.Context, coll *mongokit.Collection) *mongo.SingleResult {
	q := b.Build()

	opts := options.FindOne()
	if q.Projection != nil {
		opts.SetProjection(q.Projection)
	}
	if q.Sort != nil {
		opts.SetSort(q.Sort)
	}
	if q.Skip != nil {
		opts.SetSkip(*q.Skip)
	}

	return coll.FindOne(ctx, q.Filter, opts)
}

// Count counts the documents matching the filter. Projection and sort are
// ignored; limit and skip apply when set.
func (b *Builder) Count(ctx context.Context, coll *mongokit.Collection) (int64, error) {
	q := b.Build()

	opts := options.Count()
	if q.Limit != nil {
		opts.SetLimit(*q.Limit)
	}
	if q.Skip != nil {
		opts.SetSkip(*q.Skip)
	}

	return coll.CountDocuments(ctx, q.Filter, opts)
}

// UpdateOne applies an update to the first document matching the filter.
func (b *Builder) UpdateOne(ctx context.Context, coll *mongokit.Collection, update any) (*mongo.UpdateResult, error) {
	return coll.UpdateOne(ctx, b.Build().Filter, update)
}

// UpdateMany applies an update to every document matching the filter.
func (b *Builder) UpdateMany(ctx context.Context, coll *mongokit.Collection, update any) (*mongo.UpdateResult, error) {
	return coll.UpdateMany(ctx, b.Build().Filter, update)
}

// DeleteOne removes the first document matching the filter.
func (b *Builder) DeleteOne(ctx context.Context, coll *mongokit.Collection) (*mongo.DeleteResult, error) {
	return coll.DeleteOne(ctx, b.Build().Filter)
}

// DeleteMany removes every document matching the filter.
func (b *Builder) DeleteMany(ctx context.Context, coll *mongokit.Collection) (*mongo.DeleteResult, error) {
	return coll.DeleteMany(ctx, b.Build().Filter)
}
