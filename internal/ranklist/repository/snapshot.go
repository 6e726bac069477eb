package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"rankview/internal/common/cache"
	"rankview/internal/common/storage"
	"rankview/internal/ranklist/model"
	appErr "rankview/pkg/errors"
	"rankview/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	snapshotCachePrefix = "ranklist:snapshot:"
	snapshotContentType = "application/json"

	defaultSnapshotTTL      = 10 * time.Minute
	defaultMaxSnapshotBytes = 64 << 20
)

// SnapshotRepository loads and stores srk ranklist snapshots.
type SnapshotRepository interface {
	// GetSnapshot loads and decodes a snapshot by key.
	GetSnapshot(ctx context.Context, key string) (*model.Ranklist, error)

	// PutSnapshot encodes and stores a snapshot under key, replacing any
	// cached copy.
	PutSnapshot(ctx context.Context, key string, ranklist *model.Ranklist) error

	// ListSnapshots returns the snapshot keys under a key prefix.
	ListSnapshots(ctx context.Context, prefix string) ([]SnapshotInfo, error)

	// InvalidateCache drops the cached copy of a snapshot.
	InvalidateCache(ctx context.Context, key string) error
}

// SnapshotInfo is one entry of a snapshot listing.
type SnapshotInfo struct {
	Key       string
	SizeBytes int64
}

// ObjectSnapshotRepository reads snapshots from object storage with a Redis
// cache in front. Cached payloads are zstd-compressed JSON; a large contest
// snapshot compresses roughly 10x, which keeps Redis memory in check.
type ObjectSnapshotRepository struct {
	storage   storage.ObjectStorage
	cache     cache.Cache
	bucket    string
	keyPrefix string
	ttl       time.Duration
	maxBytes  int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// ObjectSnapshotConfig configures an ObjectSnapshotRepository.
type ObjectSnapshotConfig struct {
	Bucket    string
	KeyPrefix string
	CacheTTL  time.Duration
	MaxBytes  int64
}

func NewObjectSnapshotRepository(store storage.ObjectStorage, c cache.Cache, cfg ObjectSnapshotConfig) (*ObjectSnapshotRepository, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultSnapshotTTL
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxSnapshotBytes
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder failed: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder failed: %w", err)
	}
	return &ObjectSnapshotRepository{
		storage:   store,
		cache:     c,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.CacheTTL,
		maxBytes:  cfg.MaxBytes,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

func (r *ObjectSnapshotRepository) objectKey(key string) string {
	return path.Join(r.keyPrefix, key+".json")
}

func (r *ObjectSnapshotRepository) cacheKey(key string) string {
	return snapshotCachePrefix + key
}

func (r *ObjectSnapshotRepository) GetSnapshot(ctx context.Context, key string) (*model.Ranklist, error) {
	if key == "" {
		return nil, appErr.ValidationError("key", "required")
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, r.cacheKey(key)); err == nil && cached != "" {
			data, err := r.decoder.DecodeAll([]byte(cached), nil)
			if err == nil {
				if ranklist, err := DecodeSnapshot(data); err == nil {
					return ranklist, nil
				}
			}
			// Corrupt cache entry, drop it and refetch.
			logger.Warn(ctx, "dropping corrupt snapshot cache entry", zap.String("key", key))
			_ = r.cache.Del(ctx, r.cacheKey(key))
		}
	}

	data, err := r.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	ranklist, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		compressed := r.encoder.EncodeAll(data, nil)
		if err := r.cache.Set(ctx, r.cacheKey(key), compressed, r.ttl); err != nil {
			logger.Warn(ctx, "snapshot cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return ranklist, nil
}

func (r *ObjectSnapshotRepository) fetch(ctx context.Context, key string) ([]byte, error) {
	objectKey := r.objectKey(key)
	stat, err := r.storage.StatObject(ctx, r.bucket, objectKey)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.SnapshotNotFound).WithDetail("key", key)
	}
	if stat.SizeBytes > r.maxBytes {
		return nil, appErr.New(appErr.SnapshotTooLarge).
			WithDetail("key", key).
			WithDetail("size", stat.SizeBytes)
	}

	reader, err := r.storage.GetObject(ctx, r.bucket, objectKey)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.SnapshotFetchFailed).WithDetail("key", key)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, r.maxBytes+1))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.SnapshotFetchFailed).WithDetail("key", key)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, appErr.New(appErr.SnapshotTooLarge).WithDetail("key", key)
	}
	return data, nil
}

func (r *ObjectSnapshotRepository) PutSnapshot(ctx context.Context, key string, ranklist *model.Ranklist) error {
	if key == "" {
		return appErr.ValidationError("key", "required")
	}
	if ranklist == nil {
		return appErr.ValidationError("ranklist", "required")
	}
	data, err := json.Marshal(ranklist)
	if err != nil {
		return appErr.Wrap(err, appErr.SnapshotDecodeError).WithDetail("key", key)
	}
	reader := io.NopCloser(bytes.NewReader(data))
	if err := r.storage.PutObject(ctx, r.bucket, r.objectKey(key), reader, int64(len(data)), snapshotContentType); err != nil {
		return appErr.Wrap(err, appErr.SnapshotFetchFailed).WithDetail("key", key)
	}
	return r.InvalidateCache(ctx, key)
}

func (r *ObjectSnapshotRepository) ListSnapshots(ctx context.Context, prefix string) ([]SnapshotInfo, error) {
	listPrefix := path.Join(r.keyPrefix, prefix)
	var infos []SnapshotInfo
	for obj := range r.storage.ListObjects(ctx, r.bucket, listPrefix) {
		if obj.Err != nil {
			return nil, appErr.Wrap(obj.Err, appErr.SnapshotFetchFailed)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		key := strings.TrimSuffix(obj.Key, ".json")
		if r.keyPrefix != "" {
			key = strings.TrimPrefix(key, r.keyPrefix+"/")
		}
		infos = append(infos, SnapshotInfo{Key: key, SizeBytes: obj.SizeBytes})
	}
	return infos, nil
}

func (r *ObjectSnapshotRepository) InvalidateCache(ctx context.Context, key string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, r.cacheKey(key))
}

// DecodeSnapshot parses raw snapshot JSON into a ranklist.
func DecodeSnapshot(data []byte) (*model.Ranklist, error) {
	var ranklist model.Ranklist
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&ranklist); err != nil {
		return nil, appErr.Wrap(err, appErr.SnapshotDecodeError)
	}
	return &ranklist, nil
}

// LoadSnapshotFile reads and decodes a snapshot from a local file. Used by
// the CLI, which works on snapshot files directly instead of object storage.
func LoadSnapshotFile(filePath string) (*model.Ranklist, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErr.Wrap(err, appErr.SnapshotNotFound).WithDetail("path", filePath)
		}
		return nil, appErr.Wrap(err, appErr.SnapshotFetchFailed).WithDetail("path", filePath)
	}
	return DecodeSnapshot(data)
}
