package extract

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/starpipe/starpipe/aws/s3"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

// FetchS3Csv downloads the object at [s3://]<bucket>/<key> and parses it as
// CSV. A missing object or unreachable bucket is a SourceUnavailableError;
// for a missing object the error lists the keys available under the same
// prefix. The client factory is injectable for tests; pass nil to use the
// real AWS client.
func FetchS3Csv(log logger.Logger, newClient func(bucket, region string) s3.BasicClient, address string, region string) (*batch.Batch, error) {
	if newClient == nil {
		newClient = func(bucket, region string) s3.BasicClient {
			return s3.NewBasicClient(bucket, region, "")
		}
	}
	bucket, err := s3.ParseAddress(address, region)
	if err != nil {
		return nil, SourceUnavailableError{Locator: address, Err: err}
	}
	log.Debug("fetching S3 object ", bucket.Key, " from bucket ", bucket.Name)
	client := newClient(bucket.Name, bucket.Region)
	data, err := client.Get(bucket.Key)
	if err == s3.ErrKeyNotFound {
		return nil, SourceUnavailableError{Locator: address, Err: keyNotFoundError(client, bucket.Key)}
	}
	if err != nil {
		return nil, SourceUnavailableError{Locator: address, Err: err}
	}
	b, err := CsvToBatch(bytes.NewReader(data))
	if err != nil {
		return nil, SourceUnavailableError{Locator: address, Err: err}
	}
	log.Info("fetched ", b.NumRows(), " rows from ", address)
	return b, nil
}

// keyNotFoundError decorates a missing key with the keys that do exist under
// its prefix so a typo'd object name is obvious.
func keyNotFoundError(lister s3.Lister, key string) error {
	prefix := path.Dir(key)
	if prefix == "." {
		prefix = ""
	}
	keys, err := lister.List(prefix)
	if err != nil || len(keys) == 0 {
		return fmt.Errorf("key %q not found", key)
	}
	return fmt.Errorf("key %q not found; available keys under %q: %v", key, prefix, strings.Join(keys, ", "))
}
