// Package migrate applies versioned, JSON-defined migrations to a MongoDB
// database.
//
// Applied versions are recorded in the schema_migrations collection, guarded
// by a unique index, so re-running a migration directory is safe: versions
// already recorded are skipped. A migration is an ordered list of operations
// (collection and index management plus bulk insert/update/delete), which
// keeps migration files declarative and reviewable:
//
//	{
//	  "version": "0001_create_users",
//	  "operations": [
//	    {"type": "create_collection", "collection": "users"},
//	    {"type": "create_index", "collection": "users",
//	     "keys": [{"field": "email"}], "unique": true}
//	  ]
//	}
//
// Applied from code or the mongokit CLI:
//
//	err := migrate.New(conn).ApplyDir(ctx, "./migrations")
package migrate
