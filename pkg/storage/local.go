package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem. Each namespace is a
// directory; metadata lives next to the files under .meta/.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Put stores a file under namespace. info.Name, ContentType and Sources are kept;
// the ID, Path, Size and CreatedAt are assigned here.
func (s *LocalStorage) Put(ctx context.Context, namespace string, info FileInfo, r io.Reader) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create namespace directory: %w", err)
	}

	info.ID = uuid.New()
	info.Path = fmt.Sprintf("%s_%s", info.ID.String()[:8], sanitizeFilename(info.Name))
	filePath := filepath.Join(dir, info.Path)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info.Size = size
	info.CreatedAt = time.Now().UTC()

	if err := s.saveMetadata(dir, &info); err != nil {
		_ = os.Remove(filePath)
		return nil, err
	}
	return &info, nil
}

// Open retrieves a file by its ID
func (s *LocalStorage) Open(ctx context.Context, namespace string, id uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.GetInfo(ctx, namespace, id)
	if err != nil {
		return nil, nil, err
	}

	dir, _ := s.namespaceDir(namespace)
	f, err := os.Open(filepath.Join(dir, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Delete removes a file by its ID
func (s *LocalStorage) Delete(ctx context.Context, namespace string, id uuid.UUID) error {
	info, err := s.GetInfo(ctx, namespace, id)
	if err != nil {
		return err
	}

	dir, _ := s.namespaceDir(namespace)
	if err := os.Remove(filepath.Join(dir, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(metaPath(dir, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// List returns all files of a namespace ordered by creation time.
func (s *LocalStorage) List(ctx context.Context, namespace string) ([]*FileInfo, error) {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".meta"))
	if os.IsNotExist(err) {
		return []*FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := s.GetInfo(ctx, namespace, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

// GetInfo returns metadata for a file without opening it
func (s *LocalStorage) GetInfo(ctx context.Context, namespace string, id uuid.UUID) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(metaPath(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

func (s *LocalStorage) namespaceDir(namespace string) (string, error) {
	ns := strings.TrimSpace(namespace)
	if ns == "" || strings.HasPrefix(ns, ".") || strings.ContainsAny(ns, `/\`) {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}
	return filepath.Join(s.basePath, ns), nil
}

func (s *LocalStorage) saveMetadata(dir string, info *FileInfo) error {
	if err := os.MkdirAll(filepath.Join(dir, ".meta"), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	// Written beside the target and renamed so List never sees a partial file.
	path := metaPath(dir, info.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func metaPath(dir string, id uuid.UUID) string {
	return filepath.Join(dir, ".meta", id.String()+".json")
}

// sanitizeFilename replaces path separators and characters that are unsafe on
// common filesystems.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "..", "_")
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
