package gists

import "strings"

// Storage key layout: a flat namespace inside one bucket, two keys per gist.
const (
	// MetadataPrefix is the key prefix under which metadata records live.
	MetadataPrefix = "metadata/"

	// BlobPrefix is the key prefix under which blob payloads live.
	BlobPrefix = "blobs/"

	metadataSuffix = ".json"
)

// MetadataKey returns the object key of a gist's metadata record.
func MetadataKey(id string) string {
	return MetadataPrefix + id + metadataSuffix
}

// BlobKey returns the object key of a gist's blob payload.
func BlobKey(id string) string {
	return BlobPrefix + id
}

// IDFromMetadataKey extracts the gist id from a metadata object key.
// The second return value is false for keys outside the metadata namespace.
func IDFromMetadataKey(key string) (string, bool) {
	if !strings.HasPrefix(key, MetadataPrefix) || !strings.HasSuffix(key, metadataSuffix) {
		return "", false
	}
	id := key[len(MetadataPrefix) : len(key)-len(metadataSuffix)]
	if id == "" {
		return "", false
	}
	return id, true
}
