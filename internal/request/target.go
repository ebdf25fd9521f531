package request

import (
	"encoding/json"
	"fmt"
)

// TargetMode is the addressing scheme of a conversion target.
type TargetMode int

const (
	// ModeUnset marks a target that was absent from the payload.
	ModeUnset TargetMode = iota
	// ModeSignedURL addresses the object through a pre-signed URL.
	ModeSignedURL
	// ModeBucketKey addresses the object as bucket + key, authorized by
	// caller-supplied temporary credentials.
	ModeBucketKey
)

func (m TargetMode) String() string {
	switch m {
	case ModeSignedURL:
		return "signed_url"
	case ModeBucketKey:
		return "bucket_key"
	default:
		return "unset"
	}
}

// Target is one side of a conversion: where the source PDF lives or where
// the rendered pages go. The wire form is either a JSON string (pre-signed
// URL) or an object with bucket and key/prefix; the mode is fixed when the
// payload is decoded and never re-derived.
type Target struct {
	Mode   TargetMode
	URL    string
	Bucket string
	Key    string
}

// SignedURLTarget builds a pre-signed URL target.
func SignedURLTarget(url string) Target {
	return Target{Mode: ModeSignedURL, URL: url}
}

// BucketKeyTarget builds a bucket/key target.
func BucketKeyTarget(bucket, key string) Target {
	return Target{Mode: ModeBucketKey, Bucket: bucket, Key: key}
}

// UnmarshalJSON accepts either form of the tagged union. Destination
// objects use "prefix" where source objects use "key"; both land in Key.
func (t *Target) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Target{}
		return nil
	}

	var asURL string
	if err := json.Unmarshal(data, &asURL); err == nil {
		*t = Target{Mode: ModeSignedURL, URL: asURL}
		return nil
	}

	var asObject struct {
		Bucket string `json:"bucket"`
		Key    string `json:"key"`
		Prefix string `json:"prefix"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("target must be a URL string or a bucket/key object")
	}

	key := asObject.Key
	if key == "" {
		key = asObject.Prefix
	}
	*t = Target{Mode: ModeBucketKey, Bucket: asObject.Bucket, Key: key}
	return nil
}
