package s3

import (
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// BasicClient is the narrow S3 surface the acquirers need.
type BasicClient interface {
	Lister
	Getter
}

type Lister interface {
	List(key string) (keys []string, err error)
}

type Getter interface {
	// Get returns ErrKeyNotFound if the given key doesn't exist.
	Get(key string) (data []byte, err error)
}
