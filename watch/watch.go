package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mongokit"
)

var (
	// ErrAlreadyListening is returned by Start when the listener is running.
	ErrAlreadyListening = errors.New("change stream listener already started")

	// ErrWatchFailed wraps change stream establishment failures.
	ErrWatchFailed = errors.New("failed to open change stream")
)

// Handler is called for every change event delivered by the stream.
type Handler func(ctx context.Context, event bson.M)

// Options selects the change stream target and filter. The zero value
// watches the whole bound database.
type Options struct {
	Collection string         // watch a single collection instead of the database
	Deployment bool           // watch the whole deployment through the client
	Pipeline   mongo.Pipeline // optional aggregation filter on the event stream
	Logger     *slog.Logger   // decode/stream errors are logged here; nil disables logging
}

// Listener consumes a MongoDB change stream in a background goroutine and
// invokes a handler per event. Start and Stop are safe to call from
// different goroutines; Stop waits for the loop to drain.
type Listener struct {
	conn    *mongokit.Conn
	handler Handler
	opts    Options
	log     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a listener that will deliver change events to handler.
func New(conn *mongokit.Conn, handler Handler, opts Options) *Listener {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Listener{conn: conn, handler: handler, opts: opts, log: log}
}

// Start opens the change stream and begins delivering events. It returns
// once the stream is established; delivery happens on a background
// goroutine until Stop is called, the context is cancelled, or the stream
// ends.
func (l *Listener) Start(ctx context.Context) error {
	if l.conn.Closed() {
		return mongokit.ErrConnClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return ErrAlreadyListening
	}

	pipeline := l.opts.Pipeline
	if pipeline == nil {
		pipeline = mongo.Pipeline{}
	}

	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := l.open(streamCtx, pipeline)
	if err != nil {
		cancel()
		return errors.Join(ErrWatchFailed, err)
	}

	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go l.loop(streamCtx, stream, done)

	return nil
}

// Stop cancels the stream and waits for the delivery loop to finish. It is
// safe to call multiple times and before Start.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (l *Listener) open(ctx context.Context, pipeline mongo.Pipeline) (*mongo.ChangeStream, error) {
	opts := options.ChangeStream()

	switch {
	case l.opts.Collection != "":
		return l.conn.Collection(l.opts.Collection).Unwrap().Watch(ctx, pipeline, opts)
	case l.opts.Deployment:
		return l.conn.Client().Watch(ctx, pipeline, opts)
	default:
		return l.conn.Database().Watch(ctx, pipeline, opts)
	}
}

func (l *Listener) loop(ctx context.Context, stream *mongo.ChangeStream, done chan struct{}) {
	defer close(done)
	defer func() {
		_ = stream.Close(context.WithoutCancel(ctx))
	}()

	for stream.Next(ctx) {
		var event bson.M
		if err := stream.Decode(&event); err != nil {
			l.log.ErrorContext(ctx, "failed to decode change event", slog.Any("error", err))
			continue
		}
		l.handler(ctx, event)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		l.log.ErrorContext(ctx, "change stream ended with error", slog.Any("error", err))
	}
}
