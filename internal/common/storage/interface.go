package storage

import "context"

// ObjectStorage defines the minimal object storage operations the snapshot
// repository needs. It is intentionally small so MinIO and AWS-S3
// implementations stay interchangeable.
type ObjectStorage interface {
	// GetObject opens a reader for an object.
	// Caller must close the returned reader.
	GetObject(ctx context.Context, bucket, objectKey string) (ObjectReader, error)

	// PutObject uploads an object.
	PutObject(ctx context.Context, bucket, objectKey string, reader ObjectReader, sizeBytes int64, contentType string) error

	// StatObject returns size and ETag for an object.
	StatObject(ctx context.Context, bucket, objectKey string) (ObjectStat, error)

	// ListObjects streams metadata for objects under a key prefix.
	ListObjects(ctx context.Context, bucket, prefix string) <-chan ObjectInfo
}

// ObjectReader is a streaming reader for object data.
type ObjectReader interface {
	Read(p []byte) (int, error)
	Close() error
}

// ObjectStat contains object metadata used for validation.
type ObjectStat struct {
	SizeBytes   int64
	ETag        string
	ContentType string
}

// ObjectInfo is one entry of a bucket listing. Err is set when the listing
// itself failed; consumers must check it before the other fields.
type ObjectInfo struct {
	Key       string
	SizeBytes int64
	ETag      string
	Err       error
}
