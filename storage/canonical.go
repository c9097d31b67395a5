package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL builds the canonical storage identifier for a bucket/path
// pair: "s3://bucket/key" for S3-backed storage, "file://basePath/key" for
// local storage. It is the form persisted on Case/Chunk records.
func CanonicalURL(storageType StorageType, bucketOrBase, storagePath string) string {
	storagePath = strings.TrimPrefix(storagePath, "/")
	switch storageType {
	case StorageTypeS3:
		return fmt.Sprintf("s3://%s/%s", bucketOrBase, storagePath)
	default:
		return fmt.Sprintf("file://%s/%s", strings.TrimSuffix(bucketOrBase, "/"), storagePath)
	}
}

// ToHTTPS converts a canonical "s3://bucket/key" identifier into its
// virtual-hosted HTTPS form, reversible via FromHTTPS. Non-S3 canonical
// URLs are returned unchanged, since only S3 objects are ever served
// over plain HTTPS in this system.
func ToHTTPS(canonical, region string) (string, error) {
	if !strings.HasPrefix(canonical, "s3://") {
		return canonical, nil
	}
	rest := strings.TrimPrefix(canonical, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", fmt.Errorf("malformed s3 canonical url: %s", canonical)
	}
	bucket, key := parts[0], parts[1]
	host := fmt.Sprintf("%s.s3.amazonaws.com", bucket)
	if region != "" && region != "us-east-1" {
		host = fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
	}
	return fmt.Sprintf("https://%s/%s", host, escapeKeyPath(key)), nil
}

// escapeKeyPath percent-encodes each path segment of an S3 key
// independently, preserving "/" as the separator. url.PathEscape alone
// would also encode "/", collapsing a multi-segment key into one
// opaque segment.
func escapeKeyPath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// FromHTTPS parses a virtual-hosted S3 HTTPS URL back into its canonical
// "s3://bucket/key" form, completing the round trip with ToHTTPS.
func FromHTTPS(httpsURL string) (string, error) {
	u, err := url.Parse(httpsURL)
	if err != nil {
		return "", fmt.Errorf("parse https url: %w", err)
	}
	host := u.Host
	idx := strings.Index(host, ".s3")
	if idx <= 0 {
		return "", fmt.Errorf("not a virtual-hosted s3 url: %s", httpsURL)
	}
	bucket := host[:idx]
	key := strings.TrimPrefix(u.Path, "/")
	key, err = url.PathUnescape(key)
	if err != nil {
		return "", fmt.Errorf("unescape s3 key: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
