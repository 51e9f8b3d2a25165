package mongokit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect resolves the config, establishes a MongoDB session, and returns a
// handle bound to the configured database.
//
// A single connection attempt is made: the driver error from a failed
// connect or ping is joined onto ErrFailedToConnect and returned unchanged.
// Retry and pooling behavior beyond that is the driver's, configured through
// the pass-through fields on Config.
func Connect(ctx context.Context, cfg Config) (*Conn, error) {
	connString, database, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	// Hand-built configs bypass the env defaults; a zero timeout would
	// disable the driver's deadline entirely.
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ServerSelectionTimeout <= 0 {
		cfg.ServerSelectionTimeout = 30 * time.Second
	}

	client, err := mongo.Connect(
		options.Client().
			ApplyURI(connString).
			SetConnectTimeout(cfg.ConnectTimeout).
			SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
			SetMaxPoolSize(cfg.MaxPoolSize).
			SetMinPoolSize(cfg.MinPoolSize).
			SetMaxConnIdleTime(cfg.MaxConnIdleTime).
			SetRetryWrites(cfg.RetryWrites).
			SetRetryReads(cfg.RetryReads),
	)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	// Verify connectivity with an actual ping to catch unreachable hosts
	// and rejected credentials before handing out the handle.
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log.DebugContext(ctx, "connected to mongodb", slog.String("database", database))

	return &Conn{
		client: client,
		db:     client.Database(database),
		log:    log,
	}, nil
}

// WithConn runs fn with a freshly connected handle and guarantees the
// underlying session is closed exactly once when fn returns, whether it
// succeeded or failed. A close failure is reported only when fn itself
// returned nil.
func WithConn(ctx context.Context, cfg Config, fn func(context.Context, *Conn) error) (err error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, conn)
}
