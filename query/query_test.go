package query_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/mongokit"
	"github.com/dmitrymomot/mongokit/query"
)

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	q := query.New().Build()

	require.NotNil(t, q.Filter, "empty filter must be usable as-is")
	assert.Empty(t, q.Filter)
	assert.Nil(t, q.Projection)
	assert.Nil(t, q.Sort)
	assert.Nil(t, q.Limit)
	assert.Nil(t, q.Skip)
}

func TestBuild_Where(t *testing.T) {
	t.Parallel()

	q := query.New().
		Where("status", "active").
		Where("age", bson.M{"$gte": 18}).
		Build()

	require.Len(t, q.Filter, 2)
	assert.Equal(t, bson.E{Key: "status", Value: "active"}, q.Filter[0])
	assert.Equal(t, bson.E{Key: "age", Value: bson.M{"$gte": 18}}, q.Filter[1])
}

func TestBuild_Projection(t *testing.T) {
	t.Parallel()

	q := query.New().
		Select("name", "email").
		Exclude("password").
		Build()

	require.Len(t, q.Projection, 3)
	assert.Equal(t, bson.E{Key: "name", Value: 1}, q.Projection[0])
	assert.Equal(t, bson.E{Key: "email", Value: 1}, q.Projection[1])
	assert.Equal(t, bson.E{Key: "password", Value: 0}, q.Projection[2])
}

func TestBuild_SortDirections(t *testing.T) {
	t.Parallel()

	q := query.New().Sort("age", "-created_at").Build()

	require.Len(t, q.Sort, 2)
	assert.Equal(t, bson.E{Key: "age", Value: 1}, q.Sort[0])
	assert.Equal(t, bson.E{Key: "created_at", Value: -1}, q.Sort[1], "leading '-' sorts descending")
}

func TestBuild_Paging(t *testing.T) {
	t.Parallel()

	q := query.New().Limit(20).Skip(40).Build()

	require.NotNil(t, q.Limit)
	require.NotNil(t, q.Skip)
	assert.EqualValues(t, 20, *q.Limit)
	assert.EqualValues(t, 40, *q.Skip)
}

func testCollection(t *testing.T) *mongokit.Collection {
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

	name := "query_test_" + uuid.NewString()
	t.Cleanup(func() { _ = conn.DropCollection(context.Background(), name) })

	return conn.Collection(name)
}

func seedUsers(t *testing.T, coll *mongokit.Collection) {
	t.Helper()

	_, err := coll.InsertMany(context.Background(), []any{
		bson.M{"name": "alice", "age": 30, "status": "active"},
		bson.M{"name": "bob", "age": 25, "status": "active"},
		bson.M{"name": "carol", "age": 41, "status": "inactive"},
	})
	require.NoError(t, err)
}

func TestAll_FilterSortLimit(t *testing.T) {
	coll := testCollection(t)
	ctx := context.Background()
	seedUsers(t, coll)

	var users []bson.M
	err := query.New().
		Where("status", "active").
		Sort("-age").
		Limit(1).
		All(ctx, coll, &users)
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["name"], "descending age sort puts the oldest active user first")
}

func TestFindOne_Projection(t *testing.T) {
	coll := testCollection(t)
	ctx := context.Background()
	seedUsers(t, coll)

	var user bson.M
	err := query.New().
		Where("name", "bob").
		Select("name").
		FindOne(ctx, coll).
		Decode(&user)
	require.NoError(t, err)

	assert.Equal(t, "bob", user["name"])
	assert.NotContains(t, user, "age", "unselected fields are projected out")
}

func TestCount_OperatorFilter(t *testing.T) {
	coll := testCollection(t)
	ctx := context.Background()
	seedUsers(t, coll)

	count, err := query.New().
		Where("age", bson.M{"$lt": 35}).
		Count(ctx, coll)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestUpdateMany_ByFilter(t *testing.T) {
	coll := testCollection(t)
	ctx := context.Background()
	seedUsers(t, coll)

	res, err := query.New().
		Where("status", "active").
		UpdateMany(ctx, coll, bson.M{"$set": bson.M{"status": "archived"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.ModifiedCount)
}

func TestDeleteMany_LeavesOthers(t *testing.T) {
	coll := testCollection(t)
	ctx := context.Background()
	seedUsers(t, coll)

	res, err := query.New().
		Where("status", "inactive").
		DeleteMany(ctx, coll)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)

	remaining, err := coll.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, remaining)
}

func TestAll_ClosedConnection(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL is not set; skipping integration test")
	}
	ctx := context.Background()

	conn, err := mongokit.Connect(ctx, mongokit.Config{ConnectionURL: url})
	require.NoError(t, err)
	coll := conn.Collection("query_test_closed")
	require.NoError(t, conn.Close(ctx))

	var users []bson.M
	err = query.New().Where("name", "alice").All(ctx, coll, &users)
	assert.ErrorIs(t, err, mongokit.ErrConnClosed)
}
