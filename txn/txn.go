package txn

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/mongokit"
)

var (
	// ErrStartSession wraps session establishment failures.
	ErrStartSession = errors.New("failed to start mongodb session")
)

// WithTransaction runs fn inside a MongoDB transaction. The transaction is
// committed when fn returns nil and aborted when it returns an error; the
// session is ended exactly once either way.
//
// The context passed to fn carries the session, so any operation executed
// with it participates in the transaction. Transactions require a replica
// set or sharded cluster.
func WithTransaction(ctx context.Context, conn *mongokit.Conn, fn func(ctx context.Context) error) error {
	if conn.Closed() {
		return mongokit.ErrConnClosed
	}

	session, err := conn.Client().StartSession()
	if err != nil {
		return errors.Join(ErrStartSession, err)
	}
	defer session.EndSession(ctx)

	// Commit/abort/retry policy is the driver's; fn's error propagates
	// unchanged after the abort.
	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// WithSession runs fn with an explicit session scope and guarantees the
// session is ended when fn returns. The passed context carries the session;
// fn controls transaction boundaries itself via sess.
func WithSession(ctx context.Context, conn *mongokit.Conn, fn func(ctx context.Context, sess *mongo.Session) error) error {
	if conn.Closed() {
		return mongokit.ErrConnClosed
	}

	session, err := conn.Client().StartSession()
	if err != nil {
		return errors.Join(ErrStartSession, err)
	}
	defer session.EndSession(ctx)

	return fn(mongo.NewSessionContext(ctx, session), session)
}
