package storage

import (
	"github.com/hashicorp/go-hclog"
)

// Storage is an interface for a generic blobstore.  Get returns nil
// without error for keys that are not present.
type Storage interface {
	Get([]byte) ([]byte, error)
	Put([]byte, []byte) error
	Del([]byte) error

	// Keys returns every key that starts with prefix.
	Keys([]byte) ([][]byte, error)

	Close() error
}

// A Factory creates a store instance kept at path.  Stores that do not
// persist ignore the path.
type Factory func(l hclog.Logger, path string) (Storage, error)

// History records what quack built.
type History struct {
	s Storage
}
