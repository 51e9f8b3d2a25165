package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mongokit"
)

// namespaceExists is the server error code returned when creating a
// collection that is already there.
const namespaceExists = 48

// Manager provides schema management utilities on top of a connection
// handle: explicit collection creation with validation rules, index
// management, and collection introspection.
type Manager struct {
	conn *mongokit.Conn
}

// New returns a Manager operating on the database the handle is bound to.
func New(conn *mongokit.Conn) *Manager {
	return &Manager{conn: conn}
}

// CollectionOptions describes optional settings for CreateCollection.
// The zero value creates a plain collection.
type CollectionOptions struct {
	Validator        any    // JSON-schema validator document
	ValidationLevel  string // "off", "strict" or "moderate"; server default when empty
	ValidationAction string // "error" or "warn"; server default when empty
	Capped           bool
	SizeInBytes      int64 // required by the server when Capped is set
	MaxDocuments     int64
}

// CreateCollection explicitly creates a collection. Creating a collection
// that already exists is not an error.
func (m *Manager) CreateCollection(ctx context.Context, name string, opts CollectionOptions) error {
	builder := options.CreateCollection()

	if opts.Validator != nil {
		builder.SetValidator(opts.Validator)
		if opts.ValidationLevel != "" {
			builder.SetValidationLevel(opts.ValidationLevel)
		}
		if opts.ValidationAction != "" {
			builder.SetValidationAction(opts.ValidationAction)
		}
	}

	if opts.Capped {
		builder.SetCapped(true).SetSizeInBytes(opts.SizeInBytes)
		if opts.MaxDocuments > 0 {
			builder.SetMaxDocuments(opts.MaxDocuments)
		}
	}

	err := m.conn.CreateCollection(ctx, name, builder)
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExists {
		return nil
	}

	return errors.Join(ErrCreateCollection, err)
}

// DropCollection drops a collection. Dropping a collection that does not
// exist is a no-op on the server and therefore not an error.
func (m *Manager) DropCollection(ctx context.Context, name string) error {
	if err := m.conn.DropCollection(ctx, name); err != nil {
		return errors.Join(ErrDropCollection, err)
	}
	return nil
}

// RenameCollection renames a collection within the bound database.
func (m *Manager) RenameCollection(ctx context.Context, oldName, newName string) error {
	if m.conn.Closed() {
		return mongokit.ErrConnClosed
	}

	// renameCollection is an admin command addressed by full namespace.
	db := m.conn.Name()
	cmd := bson.D{
		{Key: "renameCollection", Value: fmt.Sprintf("%s.%s", db, oldName)},
		{Key: "to", Value: fmt.Sprintf("%s.%s", db, newName)},
	}

	if err := m.conn.Client().Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		return errors.Join(ErrRenameCollection, err)
	}
	return nil
}

// Collections lists the collection names of the bound database.
func (m *Manager) Collections(ctx context.Context) ([]string, error) {
	return m.conn.ListCollectionNames(ctx)
}

// CollectionExists reports whether the named collection exists.
func (m *Manager) CollectionExists(ctx context.Context, name string) (bool, error) {
	names, err := m.conn.ListCollectionNames(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// IndexOptions describes optional settings for CreateIndex.
type IndexOptions struct {
	Name   string
	Unique bool
	Sparse bool
}

// CreateIndex creates an index on a collection and returns its name.
func (m *Manager) CreateIndex(ctx context.Context, collection string, keys any, opts IndexOptions) (string, error) {
	if m.conn.Closed() {
		return "", mongokit.ErrConnClosed
	}

	builder := options.Index()
	if opts.Name != "" {
		builder.SetName(opts.Name)
	}
	if opts.Unique {
		builder.SetUnique(true)
	}
	if opts.Sparse {
		builder.SetSparse(true)
	}

	model := mongo.IndexModel{Keys: keys, Options: builder}

	name, err := m.conn.Collection(collection).Unwrap().Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", errors.Join(ErrCreateIndex, err)
	}
	return name, nil
}

// DropIndex drops a named index from a collection.
func (m *Manager) DropIndex(ctx context.Context, collection, indexName string) error {
	if m.conn.Closed() {
		return mongokit.ErrConnClosed
	}

	if err := m.conn.Collection(collection).Unwrap().Indexes().DropOne(ctx, indexName); err != nil {
		return errors.Join(ErrDropIndex, err)
	}
	return nil
}

// Indexes returns the index specifications of a collection.
func (m *Manager) Indexes(ctx context.Context, collection string) ([]bson.M, error) {
	if m.conn.Closed() {
		return nil, mongokit.ErrConnClosed
	}

	cur, err := m.conn.Collection(collection).Unwrap().Indexes().List(ctx)
	if err != nil {
		return nil, err
	}

	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// EnsureIndexes creates every given index, collecting failures instead of
// stopping at the first one. The returned error joins all individual
// failures.
func (m *Manager) EnsureIndexes(ctx context.Context, collection string, models ...mongo.IndexModel) error {
	if m.conn.Closed() {
		return mongokit.ErrConnClosed
	}
	if len(models) == 0 {
		return ErrNoIndexes
	}

	view := m.conn.Collection(collection).Unwrap().Indexes()

	var errs []error
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := view.CreateOne(ctx, model); err != nil {
			errs = append(errs, errors.Join(ErrCreateIndex, err))
		}
	}

	return errors.Join(errs...)
}
