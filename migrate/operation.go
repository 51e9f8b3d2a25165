package migrate

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/mongokit/schema"
)

// Operation types understood by the migrator.
const (
	OpCreateCollection = "create_collection"
	OpDropCollection   = "drop_collection"
	OpCreateIndex      = "create_index"
	OpDropIndex        = "drop_index"
	OpInsert           = "insert"
	OpUpdate           = "update"
	OpDelete           = "delete"
)

// IndexKey is one field of a create_index key document. Order is 1 for
// ascending and -1 for descending; zero means ascending.
type IndexKey struct {
	Field string `json:"field"`
	Order int    `json:"order,omitempty"`
}

// Operation is a single migration step. Type selects the action; the other
// fields are consulted per type and ignored otherwise.
type Operation struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`

	// create_collection
	Validator map[string]any `json:"validator,omitempty"`

	// create_index / drop_index
	Keys   []IndexKey `json:"keys,omitempty"`
	Unique bool       `json:"unique,omitempty"`
	Sparse bool       `json:"sparse,omitempty"`
	Index  string     `json:"index,omitempty"`

	// insert
	Documents []map[string]any `json:"documents,omitempty"`

	// update / delete
	Filter map[string]any `json:"filter,omitempty"`
	Update map[string]any `json:"update,omitempty"`
}

func (m *Migrator) run(ctx context.Context, op Operation) error {
	if op.Collection == "" {
		return ErrMissingCollection
	}

	switch op.Type {
	case OpCreateCollection:
		return m.schema.CreateCollection(ctx, op.Collection, schema.CollectionOptions{
			Validator: validatorDoc(op.Validator),
		})

	case OpDropCollection:
		return m.schema.DropCollection(ctx, op.Collection)

	case OpCreateIndex:
		keys := make(bson.D, 0, len(op.Keys))
		for _, k := range op.Keys {
			order := k.Order
			if order == 0 {
				order = 1
			}
			keys = append(keys, bson.E{Key: k.Field, Value: order})
		}
		_, err := m.schema.CreateIndex(ctx, op.Collection, keys, schema.IndexOptions{
			Unique: op.Unique,
			Sparse: op.Sparse,
		})
		return err

	case OpDropIndex:
		return m.schema.DropIndex(ctx, op.Collection, op.Index)

	case OpInsert:
		docs := make([]any, 0, len(op.Documents))
		for _, d := range op.Documents {
			docs = append(docs, d)
		}
		_, err := m.conn.Collection(op.Collection).InsertMany(ctx, docs)
		return err

	case OpUpdate:
		_, err := m.conn.Collection(op.Collection).UpdateMany(ctx, orEmpty(op.Filter), op.Update)
		return err

	case OpDelete:
		_, err := m.conn.Collection(op.Collection).DeleteMany(ctx, orEmpty(op.Filter))
		return err

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
}

// validatorDoc passes nil through so CreateCollection does not set an empty
// validator.
func validatorDoc(v map[string]any) any {
	if v == nil {
		return nil
	}
	return v
}

func orEmpty(filter map[string]any) any {
	if filter == nil {
		return bson.D{}
	}
	return filter
}
