package watch_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/mongokit"
	"github.com/dmitrymomot/mongokit/watch"
)

func TestStop_BeforeStart(t *testing.T) {
	t.Parallel()

	listener := watch.New(nil, func(ctx context.Context, event bson.M) {}, watch.Options{})

	// Stop without Start must not panic or block.
	listener.Stop()
	listener.Stop()
}

// replicaConn connects to MONGODB_TEST_REPLSET_URL; change streams are only
// available against a replica set.
func replicaConn(t *testing.T) *mongokit.Conn {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_REPLSET_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_REPLSET_URL is not set; skipping change stream test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := mongokit.Connect(ctx, mongokit.Config{ConnectionURL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	return conn
}

func TestListener_DeliversInserts(t *testing.T) {
	conn := replicaConn(t)
	ctx := context.Background()

	collName := "watch_test_" + uuid.NewString()
	coll := conn.Collection(collName)
	t.Cleanup(func() { _ = coll.Drop(context.Background()) })

	var (
		mu     sync.Mutex
		events []bson.M
	)
	listener := watch.New(conn, func(ctx context.Context, event bson.M) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	}, watch.Options{Collection: collName})

	require.NoError(t, listener.Start(ctx))
	defer listener.Stop()

	assert.ErrorIs(t, listener.Start(ctx), watch.ErrAlreadyListening)

	_, err := coll.InsertOne(ctx, bson.M{"name": "Alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, 10*time.Second, 100*time.Millisecond, "insert event should arrive")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "insert", events[0]["operationType"])
}

func TestListener_StopDrains(t *testing.T) {
	conn := replicaConn(t)
	ctx := context.Background()

	collName := "watch_test_" + uuid.NewString()
	coll := conn.Collection(collName)
	t.Cleanup(func() { _ = coll.Drop(context.Background()) })

	delivered := make(chan struct{}, 16)
	listener := watch.New(conn, func(ctx context.Context, event bson.M) {
		delivered <- struct{}{}
	}, watch.Options{Collection: collName})

	require.NoError(t, listener.Start(ctx))

	_, err := coll.InsertOne(ctx, bson.M{"name": "Alice"})
	require.NoError(t, err)

	select {
	case <-delivered:
	case <-time.After(10 * time.Second):
		t.Fatal("no event delivered")
	}

	listener.Stop()

	// After Stop returns, no further callbacks run.
	_, err = coll.InsertOne(ctx, bson.M{"name": "Bob"})
	require.NoError(t, err)

	select {
	case <-delivered:
		t.Fatal("callback ran after Stop returned")
	case <-time.After(500 * time.Millisecond):
	}

	// Restart after Stop is allowed.
	require.NoError(t, listener.Start(ctx))
	listener.Stop()
}

func TestStart_ClosedConn(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL is not set; skipping integration test")
	}
	ctx := context.Background()

	conn, err := mongokit.Connect(ctx, mongokit.Config{ConnectionURL: url})
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	listener := watch.New(conn, func(ctx context.Context, event bson.M) {}, watch.Options{})
	assert.ErrorIs(t, listener.Start(ctx), mongokit.ErrConnClosed)
}
