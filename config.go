package mongokit

import (
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/mongokit/uri"
)

// defaultAuthSource is used when credentials are supplied without an
// explicit authentication database.
const defaultAuthSource = "admin"

// Config represents the configuration for a MongoDB connection.
//
// Exactly one addressing form is used per connection attempt: either
// ConnectionURL carries a full connection string, or Host/Port/Database
// describe the target individually. When ConnectionURL is set it wins and
// the individual fields are only consulted for the database name.
type Config struct {
	ConnectionURL string `env:"MONGODB_URL"`                        // ConnectionURL is a full mongodb:// or mongodb+srv:// connection string.
	Host          string `env:"MONGODB_HOST"`                       // Host is the database host (individual-parameter form).
	Port          int    `env:"MONGODB_PORT" envDefault:"27017"`    // Port is the database port.
	Database      string `env:"MONGODB_DATABASE"`                   // Database is the database the returned handle is bound to.
	Username      string `env:"MONGODB_USERNAME"`                   // Username is optional; only meaningful together with Password.
	Password      string `env:"MONGODB_PASSWORD"`                   // Password is optional.
	AuthSource    string `env:"MONGODB_AUTH_SOURCE"`                // AuthSource is the authentication database; defaults to "admin" when credentials are set.

	// Driver pass-through options. This layer adds no retry or pooling
	// policy of its own; these values are handed to the driver untouched.
	ConnectTimeout         time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`           // ConnectTimeout is the timeout for establishing a connection.
	ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"30s"`  // ServerSelectionTimeout is the driver's server selection timeout.
	MaxPoolSize            uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`             // MaxPoolSize is the maximum number of connections in the driver pool.
	MinPoolSize            uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`               // MinPoolSize is the minimum number of connections in the driver pool.
	MaxConnIdleTime        time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`       // MaxConnIdleTime is the maximum idle time for pooled connections.
	RetryWrites            bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`             // RetryWrites enables the driver's retryable writes.
	RetryReads             bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`              // RetryReads enables the driver's retryable reads.

	// Logger receives debug-level connect/close events. Nil disables logging.
	Logger *slog.Logger `env:"-"`
}

// LoadConfig populates a Config from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load() // the .env file is optional

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Validate checks that the config describes a reachable target. It never
// touches the network.
func (cfg Config) Validate() error {
	_, _, err := cfg.resolve()
	return err
}

// resolve turns the config into a driver connection string and the database
// name the handle will be bound to.
func (cfg Config) resolve() (connString, database string, err error) {
	if cfg.ConnectionURL != "" {
		if !uri.IsURI(cfg.ConnectionURL) {
			return "", "", ErrInvalidConnectionURL
		}

		parsed, err := uri.Parse(cfg.ConnectionURL)
		if err != nil {
			return "", "", errors.Join(ErrInvalidConnectionURL, err)
		}

		database = parsed.Database
		if cfg.Database != "" {
			database = cfg.Database
		}
		if database == "" {
			return "", "", ErrMissingDatabase
		}

		return cfg.ConnectionURL, database, nil
	}

	if cfg.Host == "" && cfg.Database == "" {
		return "", "", ErrNoConnectionTarget
	}

	switch {
	case cfg.Host == "":
		return "", "", ErrMissingHost
	case cfg.Port <= 0:
		return "", "", ErrMissingPort
	case cfg.Database == "":
		return "", "", ErrMissingDatabase
	}

	u := uri.URI{
		Scheme:   uri.SchemeMongoDB,
		Hosts:    []uri.HostPort{{Host: cfg.Host, Port: cfg.Port}},
		Database: cfg.Database,
	}

	if cfg.Username != "" {
		u.Username = cfg.Username
		u.Password = cfg.Password

		authSource := cfg.AuthSource
		if authSource == "" {
			authSource = defaultAuthSource
		}
		u.Params = url.Values{"authSource": []string{authSource}}
	}

	return u.String(), cfg.Database, nil
}
