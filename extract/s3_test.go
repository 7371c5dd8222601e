package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/starpipe/starpipe/aws/s3"
)

// fakeS3Client serves objects from a map and lists their keys.
type fakeS3Client struct {
	objects map[string][]byte
}

func (c *fakeS3Client) List(prefix string) ([]string, error) {
	keys := make([]string, 0)
	for k := range c.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (c *fakeS3Client) Get(key string) ([]byte, error) {
	data, ok := c.objects[key]
	if !ok {
		return nil, s3.ErrKeyNotFound
	}
	return data, nil
}

func TestFetchS3Csv(t *testing.T) {
	client := &fakeS3Client{objects: map[string][]byte{
		"products.csv": []byte("product_name,weight\nSoap,500g\n"),
	}}
	newClient := func(bucket, region string) s3.BasicClient { return client }
	b, err := FetchS3Csv(newTestLogger(), newClient, "s3://data-handling-public/products.csv", "eu-west-1")
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if b.NumRows() != 1 || b.Cell("weight", 0) != "500g" {
		t.Fatal("unexpected batch contents")
	}
}

func TestFetchS3CsvKeyNotFound(t *testing.T) {
	client := &fakeS3Client{objects: map[string][]byte{
		"products.csv": []byte("product_name\n"),
	}}
	newClient := func(bucket, region string) s3.BasicClient { return client }
	_, err := FetchS3Csv(newTestLogger(), newClient, "s3://data-handling-public/prodcuts.csv", "eu-west-1")
	var su SourceUnavailableError
	if !errors.As(err, &su) {
		t.Fatal("expected SourceUnavailableError; got ", err)
	}
	// The error names the keys that do exist so a typo is obvious.
	if !strings.Contains(err.Error(), "products.csv") {
		t.Fatal("expected available keys in the error; got ", err.Error())
	}
}
