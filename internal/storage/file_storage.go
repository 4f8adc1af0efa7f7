package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/yourorg/watchlist-service/internal/config"
	"github.com/yourorg/watchlist-service/internal/model"
)

// FileStorage implements Storage on the local filesystem: one TOML file
// per watchlist under the base directory, archived records in a
// subdirectory next to them.
type FileStorage struct {
	basePath    string
	archivePath string
	permissions os.FileMode
}

// NewFileStorage creates a FileStorage, creating the base and archive
// directories if they don't exist.
func NewFileStorage(cfg *config.StorageConfig) (*FileStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	archivePath := filepath.Join(cfg.BasePath, cfg.ArchiveDir)
	if err := os.MkdirAll(archivePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	perms, err := strconv.ParseUint(cfg.Permissions, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid permissions format: %w", err)
	}

	return &FileStorage{
		basePath:    cfg.BasePath,
		archivePath: archivePath,
		permissions: os.FileMode(perms),
	}, nil
}

// Read loads and decodes the TOML record stored under filename.
func (s *FileStorage) Read(ctx context.Context, filename string) (*model.Record, error) {
	path, err := s.recordPath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read record %s: %w", filename, err)
	}

	var rec model.Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", filename, err)
	}

	return &rec, nil
}

// Write encodes the record as TOML and persists it under filename,
// replacing any previous record.
func (s *FileStorage) Write(ctx context.Context, filename string, rec *model.Record) error {
	path, err := s.recordPath(filename)
	if err != nil {
		return err
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", filename, err)
	}

	if err := os.WriteFile(path, data, s.permissions); err != nil {
		return fmt.Errorf("failed to write record %s: %w", filename, err)
	}

	return nil
}

// Exists reports whether a record file is stored under filename.
func (s *FileStorage) Exists(ctx context.Context, filename string) (bool, error) {
	path, err := s.recordPath(filename)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat record %s: %w", filename, err)
	}
	return true, nil
}

// List returns the filenames of all active records, archive excluded.
func (s *FileStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if model.HasExtension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Delete removes the record stored under filename.
func (s *FileStorage) Delete(ctx context.Context, filename string) error {
	path, err := s.recordPath(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWatchlistNotFound, filename)
		}
		return fmt.Errorf("failed to delete record %s: %w", filename, err)
	}
	return nil
}

// Archive moves the record into the archive directory, replacing any
// archived record of the same name.
func (s *FileStorage) Archive(ctx context.Context, filename string) error {
	path, err := s.recordPath(filename)
	if err != nil {
		return err
	}

	dest := filepath.Join(s.archivePath, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWatchlistNotFound, filename)
		}
		return fmt.Errorf("failed to archive record %s: %w", filename, err)
	}
	return nil
}

// recordPath resolves a filename to its path under the base directory.
// Names carrying path separators or missing the extension are rejected so
// records can never escape the base directory.
func (s *FileStorage) recordPath(filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid record name: %q", filename)
	}
	if !model.HasExtension(filename) {
		return "", fmt.Errorf("record name %q is missing the %s extension", filename, model.Extension)
	}
	return filepath.Join(s.basePath, filename), nil
}
