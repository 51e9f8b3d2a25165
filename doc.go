// Package mongokit is a thin convenience layer over the official MongoDB Go
// driver: connection management with DSN-or-fields configuration, a
// database-bound handle with scoped acquisition, and a delegating collection
// surface.
//
// The package deliberately owns almost nothing. Every collection operation
// is a direct pass-through to the driver, retry and pooling policy is
// inherited wholesale from the driver's defaults (exposed as pass-through
// Config fields), and all database-level errors propagate unchanged. What
// this layer does own is the part with design content: resolving connection
// parameters into a live handle, validating them before any network attempt,
// and guaranteeing the underlying session is released exactly once.
//
// # Usage
//
//	cfg := mongokit.Config{
//		ConnectionURL: "mongodb://localhost:27017/testdb",
//	}
//
//	err := mongokit.WithConn(ctx, cfg, func(ctx context.Context, conn *mongokit.Conn) error {
//		users := conn.Collection("users")
//
//		if _, err := users.InsertOne(ctx, bson.M{"name": "Alice", "age": 30}); err != nil {
//			return err
//		}
//
//		var doc bson.M
//		return users.FindOne(ctx, bson.M{"name": "Alice"}).Decode(&doc)
//	})
//
// For long-lived handles, Connect returns the handle directly and the caller
// owns Close:
//
//	conn, err := mongokit.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close(context.Background())
//
// # Configuration
//
// Config is environment-driven through env tags; LoadConfig reads an
// optional .env file and the process environment. Two addressing forms are
// supported: a full connection string (MONGODB_URL), or individual
// host/port/database fields with optional credentials. Incomplete
// individual-parameter configs fail with a configuration error before any
// network call.
//
// # Error Handling
//
// Configuration errors and connection failures are exposed as sentinel
// errors matchable with errors.Is; driver errors are joined on, never
// reinterpreted.
//
// Supporting packages build on the handle: uri (connection string
// parse/build), schema (collections and indexes), migrate (versioned
// migrations), txn (sessions and transactions), watch (change streams),
// pipeline (aggregation builder), and query (find/update/delete builder).
package mongokit
