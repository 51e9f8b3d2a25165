package migrate_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/mongokit"
	"github.com/dmitrymomot/mongokit/migrate"
)

func TestMigration_DecodeJSON(t *testing.T) {
	t.Parallel()

	raw := `{
		"version": "0001_create_users",
		"operations": [
			{"type": "create_collection", "collection": "users"},
			{"type": "create_index", "collection": "users",
			 "keys": [{"field": "email"}, {"field": "created_at", "order": -1}],
			 "unique": true},
			{"type": "insert", "collection": "users",
			 "documents": [{"name": "Alice", "age": 30}]}
		]
	}`

	var m migrate.Migration
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, "0001_create_users", m.Version)
	require.Len(t, m.Operations, 3)
	assert.Equal(t, migrate.OpCreateCollection, m.Operations[0].Type)

	idx := m.Operations[1]
	require.Len(t, idx.Keys, 2)
	assert.Equal(t, "email", idx.Keys[0].Field)
	assert.Zero(t, idx.Keys[0].Order, "omitted order decodes to zero, applied as ascending")
	assert.Equal(t, -1, idx.Keys[1].Order)
	assert.True(t, idx.Unique)

	assert.Equal(t, "Alice", m.Operations[2].Documents[0]["name"])
}

func TestApply_MissingVersion(t *testing.T) {
	t.Parallel()

	err := migrate.New(nil).Apply(context.Background(), migrate.Migration{})
	assert.ErrorIs(t, err, migrate.ErrMissingVersion)
}

// testConn skips unless MONGODB_TEST_URL names a reachable database.
func testConn(t *testing.T) *mongokit.Conn {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL is not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := mongokit.Connect(ctx, mongokit.Config{ConnectionURL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	return conn
}

func TestApply_RecordsVersionAndSkipsReruns(t *testing.T) {
	conn := testConn(t)
	ctx := context.Background()

	collection := "mig_users_" + uuid.NewString()
	version := "test_" + uuid.NewString()
	t.Cleanup(func() {
		_ = conn.DropCollection(context.Background(), collection)
		_, _ = conn.Collection(migrate.Collection).DeleteMany(context.Background(), bson.M{"version": version})
	})

	migration := migrate.Migration{
		Version: version,
		Operations: []migrate.Operation{
			{Type: migrate.OpCreateCollection, Collection: collection},
			{Type: migrate.OpInsert, Collection: collection, Documents: []map[string]any{
				{"name": "Alice", "age": 30},
			}},
		},
	}

	m := migrate.New(conn)
	require.NoError(t, m.Apply(ctx, migration))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Contains(t, applied, version)

	// A second apply is a no-op: the document is not inserted twice.
	require.NoError(t, m.Apply(ctx, migration))

	count, err := conn.Collection(collection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRollback(t *testing.T) {
	conn := testConn(t)
	ctx := context.Background()

	version := "test_" + uuid.NewString()
	m := migrate.New(conn)

	require.NoError(t, m.Apply(ctx, migrate.Migration{Version: version}))
	require.NoError(t, m.Rollback(ctx, version))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.NotContains(t, applied, version)

	assert.ErrorIs(t, m.Rollback(ctx, version), migrate.ErrNotApplied)
}

func TestApplyDir(t *testing.T) {
	conn := testConn(t)
	ctx := context.Background()

	collection := "mig_dir_" + uuid.NewString()
	v1 := "0001_" + uuid.NewString()
	v2 := "0002_" + uuid.NewString()
	t.Cleanup(func() {
		_ = conn.DropCollection(context.Background(), collection)
		_, _ = conn.Collection(migrate.Collection).DeleteMany(context.Background(),
			bson.M{"version": bson.M{"$in": []string{v1, v2}}})
	})

	dir := t.TempDir()
	writeMigration(t, filepath.Join(dir, "0001.json"), migrate.Migration{
		Version: v1,
		Operations: []migrate.Operation{
			{Type: migrate.OpCreateCollection, Collection: collection},
			{Type: migrate.OpInsert, Collection: collection, Documents: []map[string]any{
				{"name": "Alice", "age": 30},
			}},
		},
	})
	writeMigration(t, filepath.Join(dir, "0002.json"), migrate.Migration{
		Version: v2,
		Operations: []migrate.Operation{
			{Type: migrate.OpUpdate, Collection: collection,
				Filter: map[string]any{"name": "Alice"},
				Update: map[string]any{"$set": map[string]any{"age": 31}}},
		},
	})

	require.NoError(t, migrate.New(conn).ApplyDir(ctx, dir))

	var doc bson.M
	require.NoError(t, conn.Collection(collection).FindOne(ctx, bson.M{"name": "Alice"}).Decode(&doc))
	assert.EqualValues(t, 31, doc["age"], "migrations apply in lexicographic order")
}

func TestRun_UnknownOperation(t *testing.T) {
	t.Parallel()

	err := migrate.Run(context.Background(), nil, []migrate.Operation{
		{Type: "explode", Collection: "users"},
	})
	assert.ErrorIs(t, err, migrate.ErrUnknownOperation)
}

func TestRun_MissingCollection(t *testing.T) {
	t.Parallel()

	err := migrate.Run(context.Background(), nil, []migrate.Operation{
		{Type: migrate.OpInsert},
	})
	assert.ErrorIs(t, err, migrate.ErrMissingCollection)
}

func writeMigration(t *testing.T, path string, m migrate.Migration) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
