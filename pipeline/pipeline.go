package pipeline

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/mongokit"
)

// Builder accumulates aggregation stages in order. Methods append and
// return the builder for chaining; the zero value is ready to use.
type Builder struct {
	stages mongo.Pipeline
}

// New returns an empty pipeline builder.
func New() *Builder {
	return &Builder{}
}

// Match appends a $match stage.
func (b *Builder) Match(filter any) *Builder {
	return b.Stage(bson.D{{Key: "$match", Value: filter}})
}

// Project appends a $project stage.
func (b *Builder) Project(projection any) *Builder {
	return b.Stage(bson.D{{Key: "$project", Value: projection}})
}

// Group appends a $group stage.
func (b *Builder) Group(group any) *Builder {
	return b.Stage(bson.D{{Key: "$group", Value: group}})
}

// Sort appends a $sort stage.
func (b *Builder) Sort(sort any) *Builder {
	return b.Stage(bson.D{{Key: "$sort", Value: sort}})
}

// Limit appends a $limit stage.
func (b *Builder) Limit(n int64) *Builder {
	return b.Stage(bson.D{{Key: "$limit", Value: n}})
}

// Skip appends a $skip stage.
func (b *Builder) Skip(n int64) *Builder {
	return b.Stage(bson.D{{Key: "$skip", Value: n}})
}

// Unwind appends an $unwind stage for the given field path (e.g. "$tags").
func (b *Builder) Unwind(path string) *Builder {
	return b.Stage(bson.D{{Key: "$unwind", Value: path}})
}

// Lookup appends a $lookup stage joining another collection.
func (b *Builder) Lookup(from, localField, foreignField, as string) *Builder {
	return b.Stage(bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}}})
}

// Count appends a $count stage writing the total into the named field.
func (b *Builder) Count(field string) *Builder {
	return b.Stage(bson.D{{Key: "$count", Value: field}})
}

// AddFields appends an $addFields stage.
func (b *Builder) AddFields(fields any) *Builder {
	return b.Stage(bson.D{{Key: "$addFields", Value: fields}})
}

// Stage appends a raw stage for operators without a dedicated method.
func (b *Builder) Stage(stage bson.D) *Builder {
	b.stages = append(b.stages, stage)
	return b
}

// Stages returns the accumulated pipeline.
func (b *Builder) Stages() mongo.Pipeline {
	return b.stages
}

// Run executes the pipeline against a collection and returns the driver's
// lazy cursor.
func (b *Builder) Run(ctx context.Context, coll *mongokit.Collection) (*mongo.Cursor, error) {
	return coll.Aggregate(ctx, b.Stages())
}

// All executes the pipeline and decodes every result into results, which
// must be a pointer to a slice.
func (b *Builder) All(ctx context.Context, coll *mongokit.Collection, results any) error {
	cur, err := b.Run(ctx, coll)
	if err != nil {
		return err
	}
	return cur.All(ctx, results)
}
