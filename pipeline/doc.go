// Package pipeline builds MongoDB aggregation pipelines fluently.
//
// The builder keeps stage order and stays out of the way: every method maps
// one-to-one onto an aggregation operator, and Stage accepts anything the
// dedicated methods do not cover. Execution delegates to the collection's
// Aggregate pass-through.
//
//	var results []bson.M
//	err := pipeline.New().
//		Match(bson.M{"status": "active"}).
//		Group(bson.M{"_id": "$plan", "total": bson.M{"$sum": 1}}).
//		Sort(bson.M{"total": -1}).
//		All(ctx, conn.Collection("subscriptions"), &results)
package pipeline
