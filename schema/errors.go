package schema

import "errors"

var (
	ErrCreateCollection = errors.New("failed to create collection")
	ErrDropCollection   = errors.New("failed to drop collection")
	ErrRenameCollection = errors.New("failed to rename collection")
	ErrCreateIndex      = errors.New("failed to create index")
	ErrDropIndex        = errors.New("failed to drop index")
	ErrNoIndexes        = errors.New("at least one index must be provided")
)
