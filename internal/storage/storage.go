package storage

import (
	"context"
	"errors"

	"github.com/yourorg/watchlist-service/internal/model"
)

// Storage errors. Callers compare with errors.Is.
var (
	ErrWatchlistNotFound = errors.New("watchlist record not found")
	ErrWatchlistExists   = errors.New("watchlist record already exists")
)

// Storage defines the record store: it persists watchlist records under
// their filenames and never interprets their contents beyond the TOML
// codec. No locking is performed; at most one writer per record is
// assumed external to this service.
type Storage interface {
	// Read loads the record stored under filename.
	Read(ctx context.Context, filename string) (*model.Record, error)

	// Write persists a record under filename, replacing any previous one.
	Write(ctx context.Context, filename string, rec *model.Record) error

	// Exists reports whether a record is stored under filename.
	Exists(ctx context.Context, filename string) (bool, error)

	// List returns the filenames of all stored records.
	List(ctx context.Context) ([]string, error)

	// Delete removes the record stored under filename.
	Delete(ctx context.Context, filename string) error

	// Archive moves the record out of the active set into the archive.
	Archive(ctx context.Context, filename string) error
}
