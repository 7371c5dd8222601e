package s3

import (
	"fmt"
	"net/url"
	"strings"
)

// AwsS3Bucket identifies an S3 object source.
type AwsS3Bucket struct {
	Name   string
	Key    string
	Region string
}

// ParseAddress expects address to be of the form [s3://]<bucket>/<key>.
// It returns an AwsS3Bucket populated with the components of the address and
// the supplied region. If there is a parsing error it returns an error.
func ParseAddress(address string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := "s3"
	s3url, err := url.Parse(address)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != "" && s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	if region == "" {
		return retval, fmt.Errorf("value expected for bucket region")
	}
	if s3url.Scheme == "" { // scheme-less bucket/key form
		parts := strings.SplitN(strings.Trim(address, "/"), "/", 2)
		s3url.Host = parts[0]
		if len(parts) == 2 {
			s3url.Path = parts[1]
		} else {
			s3url.Path = ""
		}
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("address failed to parse bucket name")
	}
	retval.Key = strings.Trim(s3url.Path, "/")
	if retval.Key == "" {
		return retval, fmt.Errorf("address failed to parse object key")
	}
	retval.Region = region
	return
}
