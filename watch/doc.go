// Package watch delivers MongoDB change stream events to a callback.
//
// A Listener targets a collection, the bound database, or the whole
// deployment, optionally filtered by an aggregation pipeline. Events are
// delivered on a background goroutine; Stop cancels the stream and waits
// for delivery to drain, so no callback runs after Stop returns.
//
//	listener := watch.New(conn, func(ctx context.Context, event bson.M) {
//		log.Printf("change: %v", event["operationType"])
//	}, watch.Options{Collection: "orders"})
//
//	if err := listener.Start(ctx); err != nil {
//		return err
//	}
//	defer listener.Stop()
//
// Change streams require a replica set or sharded cluster.
package watch
