// Package schema provides collection and index management on top of a
// mongokit connection handle.
//
// The Manager covers the administrative surface an application typically
// needs at startup or in migrations: explicit collection creation with
// JSON-schema validation rules, index creation and removal, and collection
// introspection. CreateCollection is idempotent so it can run on every boot;
// EnsureIndexes attempts every index and joins the failures so one broken
// definition does not hide the rest.
//
//	mgr := schema.New(conn)
//
//	err := mgr.CreateCollection(ctx, "users", schema.CollectionOptions{
//		Validator: bson.M{"$jsonSchema": bson.M{
//			"bsonType": "object",
//			"required": []string{"email"},
//		}},
//	})
//
//	_, err = mgr.CreateIndex(ctx, "users", bson.D{{Key: "email", Value: 1}},
//		schema.IndexOptions{Unique: true})
package schema
