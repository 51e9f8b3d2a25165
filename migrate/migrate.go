package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/mongokit"
	"github.com/dmitrymomot/mongokit/schema"
)

// Collection is where applied migration versions are recorded.
const Collection = "schema_migrations"

// Migration is a named set of operations applied atomically from the
// version-tracking perspective: the version is recorded only after every
// operation succeeded.
type Migration struct {
	Version    string      `json:"version"`
	Operations []Operation `json:"operations"`
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the logger for per-operation progress output.
func WithLogger(log *slog.Logger) Option {
	return func(m *Migrator) {
		if log != nil {
			m.log = log
		}
	}
}

// Migrator applies versioned migrations against the database a connection
// handle is bound to.
type Migrator struct {
	conn   *mongokit.Conn
	schema *schema.Manager
	log    *slog.Logger
}

// New returns a Migrator for the given connection handle.
func New(conn *mongokit.Conn, opts ...Option) *Migrator {
	m := &Migrator{
		conn:   conn,
		schema: schema.New(conn),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Applied returns the set of migration versions recorded as applied.
func (m *Migrator) Applied(ctx context.Context) (map[string]struct{}, error) {
	cur, err := m.conn.Collection(Collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var records []struct {
		Version string `bson:"version"`
	}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}

	applied := make(map[string]struct{}, len(records))
	for _, r := range records {
		applied[r.Version] = struct{}{}
	}
	return applied, nil
}

// Apply runs a migration unless its version is already recorded. On success
// the version is recorded with the application timestamp.
func (m *Migrator) Apply(ctx context.Context, migration Migration) error {
	if migration.Version == "" {
		return ErrMissingVersion
	}

	if err := m.ensureVersionTracking(ctx); err != nil {
		return err
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if _, ok := applied[migration.Version]; ok {
		m.log.DebugContext(ctx, "migration already applied", slog.String("version", migration.Version))
		return nil
	}

	for i, op := range migration.Operations {
		m.log.InfoContext(ctx, "applying migration operation",
			slog.String("version", migration.Version),
			slog.Int("operation", i),
			slog.String("type", op.Type),
		)
		if err := m.run(ctx, op); err != nil {
			return fmt.Errorf("migration %s, operation %d (%s): %w", migration.Version, i, op.Type, err)
		}
	}

	_, err = m.conn.Collection(Collection).InsertOne(ctx, bson.M{
		"version":    migration.Version,
		"applied_at": time.Now().UTC(),
	})
	return err
}

// Rollback removes the record of an applied migration. Reversing the data
// changes themselves is the caller's responsibility through a compensating
// migration.
func (m *Migrator) Rollback(ctx context.Context, version string) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if _, ok := applied[version]; !ok {
		return fmt.Errorf("%w: %s", ErrNotApplied, version)
	}

	_, err = m.conn.Collection(Collection).DeleteOne(ctx, bson.M{"version": version})
	return err
}

// ApplyFile applies a migration from a JSON file. When the file does not
// name a version, its base name is used.
func (m *Migrator) ApplyFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var migration Migration
	if err := json.Unmarshal(data, &migration); err != nil {
		return fmt.Errorf("parsing migration file %s: %w", path, err)
	}
	if migration.Version == "" {
		migration.Version = filepath.Base(path)
	}

	return m.Apply(ctx, migration)
}

// ApplyDir applies every .json migration in a directory in lexicographic
// order, skipping versions that are already recorded.
func (m *Migrator) ApplyDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)

	for _, name := range files {
		if err := m.ApplyFile(ctx, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Run executes operations directly, without version tracking. It backs
// ad-hoc administrative scripts that reuse the migration operation format.
func Run(ctx context.Context, conn *mongokit.Conn, ops []Operation) error {
	m := New(conn)
	for i, op := range ops {
		if err := m.run(ctx, op); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, op.Type, err)
		}
	}
	return nil
}

// ensureVersionTracking creates the migrations collection and its unique
// version index. Both calls are idempotent so this runs on every Apply.
func (m *Migrator) ensureVersionTracking(ctx context.Context) error {
	exists, err := m.schema.CollectionExists(ctx, Collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = m.schema.CreateCollection(ctx, Collection, schema.CollectionOptions{
		Validator: bson.M{"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"version"},
			"properties": bson.M{
				"version":    bson.M{"bsonType": "string"},
				"applied_at": bson.M{"bsonType": "date"},
			},
		}},
	})
	if err != nil {
		return err
	}

	_, err = m.schema.CreateIndex(ctx, Collection,
		bson.D{{Key: "version", Value: 1}},
		schema.IndexOptions{Unique: true},
	)
	return err
}

var (
	// ErrMissingVersion is returned when a migration has no version.
	ErrMissingVersion = errors.New("migration version is required")

	// ErrNotApplied is returned by Rollback for unknown versions.
	ErrNotApplied = errors.New("migration not applied")

	// ErrUnknownOperation is returned for unrecognized operation types.
	ErrUnknownOperation = errors.New("unknown migration operation type")

	// ErrMissingCollection is returned when an operation names no collection.
	ErrMissingCollection = errors.New("migration operation requires a collection")
)
