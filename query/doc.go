// Package query builds MongoDB find, count, update and delete operations
// fluently.
//
// Conditions accumulate with Where, projections with Select and Exclude,
// ordering with Sort (a leading '-' marks a field descending) and paging
// with Limit and Skip. Execution delegates to the collection's
// pass-through methods, so closed-connection and driver error semantics
// are identical to calling the collection directly.
//
//	var users []bson.M
//	err := query.New().
//		Where("status", "active").
//		Where("age", bson.M{"$gte": 18}).
//		Select("name", "email").
//		Sort("-created_at").
//		Limit(20).
//		All(ctx, conn.Collection("users"), &users)
package query
