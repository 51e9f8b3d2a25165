package mongokit

import "errors"

// Configuration errors are returned before any network attempt is made.
var (
	ErrNoConnectionTarget   = errors.New("either connection url or host/port/database must be set")
	ErrMissingHost          = errors.New("host is required when no connection url is set")
	ErrMissingPort          = errors.New("port is required when no connection url is set")
	ErrMissingDatabase      = errors.New("database name is required")
	ErrInvalidConnectionURL = errors.New("invalid mongodb connection url")
	ErrParsingConfig        = errors.New("failed to parse environment variables into config")
)

// Connection and operation errors. Driver errors are joined onto these
// sentinels so callers can both match with errors.Is and inspect the
// underlying driver error.
var (
	ErrFailedToConnect   = errors.New("failed to connect to mongodb")
	ErrConnClosed        = errors.New("mongodb connection is closed")
	ErrHealthcheckFailed = errors.New("mongodb healthcheck failed")
)
