// Package txn scopes MongoDB sessions and transactions around a callback.
//
// WithTransaction is the common entry point: it starts a session, runs the
// callback inside the driver's transaction machinery, and ends the session
// exactly once whether the callback committed or failed.
//
//	err := txn.WithTransaction(ctx, conn, func(ctx context.Context) error {
//		if _, err := conn.Collection("accounts").UpdateOne(ctx,
//			bson.M{"_id": from}, bson.M{"$inc": bson.M{"balance": -amount}}); err != nil {
//			return err
//		}
//		_, err := conn.Collection("accounts").UpdateOne(ctx,
//			bson.M{"_id": to}, bson.M{"$inc": bson.M{"balance": amount}})
//		return err
//	})
package txn
