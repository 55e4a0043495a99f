package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

const metaSuffix = ".meta"

// ErrInvalidKey is returned for keys that could escape the storage root
var ErrInvalidKey = apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid object key")

// LocalStorage stores objects as files under a root directory, each with a
// sidecar <key>.meta JSON document holding its ObjectInfo.
type LocalStorage struct {
	basePath           string
	defaultContentType string
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
// defaultContentType is recorded for objects stored without one.
func NewLocalStorage(basePath, defaultContentType string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if defaultContentType == "" {
		defaultContentType = "application/pdf"
	}

	return &LocalStorage{
		basePath:           basePath,
		defaultContentType: defaultContentType,
	}, nil
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.HasSuffix(key, metaSuffix) {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && !strings.ContainsRune(key, 0)
}

func (ls *LocalStorage) objectPath(key string) string {
	return filepath.Join(ls.basePath, key)
}

// Put writes the object to a temp file and renames it into place so readers
// never observe a partial object.
func (ls *LocalStorage) Put(ctx context.Context, key string, r io.Reader, contentType, filename string) (*ObjectInfo, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = ls.defaultContentType
	}

	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to create temp file")
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to write object content")
		return nil, fmt.Errorf("failed to save object content: %w", err)
	}

	info := &ObjectInfo{
		Key:         key,
		ContentType: contentType,
		Filename:    filename,
		Size:        size,
		StoredAt:    time.Now().UTC(),
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object metadata: %w", err)
	}
	if err := os.WriteFile(ls.objectPath(key)+metaSuffix, meta, 0o644); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to write object metadata")
		return nil, fmt.Errorf("failed to write object metadata: %w", err)
	}

	if err := os.Rename(tmpName, ls.objectPath(key)); err != nil {
		_ = os.Remove(ls.objectPath(key) + metaSuffix)
		logger.Error().Err(err).Str("key", key).Msg("Failed to move object into place")
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	logger.Info().Str("key", key).Int64("size", size).Str("content_type", contentType).Msg("Object stored")
	return info, nil
}

// Get opens an object and its metadata. Objects written without a sidecar
// fall back to the default content type.
func (ls *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	if !validKey(key) {
		return nil, nil, apperrors.ErrFileNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(ls.objectPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperrors.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open object: %w", err)
	}

	info := &ObjectInfo{Key: key, ContentType: ls.defaultContentType}
	if raw, err := os.ReadFile(ls.objectPath(key) + metaSuffix); err == nil {
		if err := json.Unmarshal(raw, info); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable object metadata")
		}
	}
	if info.ContentType == "" {
		info.ContentType = ls.defaultContentType
	}
	if st, err := f.Stat(); err == nil {
		info.Size = st.Size()
	}

	return f, info, nil
}

// Delete removes an object and its metadata. Missing objects are ignored.
func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	for _, p := range []string{ls.objectPath(key), ls.objectPath(key) + metaSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error().Err(err).Str("path", p).Msg("Failed to delete object")
			return fmt.Errorf("failed to delete object: %w", err)
		}
	}

	logger.Info().Str("key", key).Msg("Object deleted")
	return nil
}
