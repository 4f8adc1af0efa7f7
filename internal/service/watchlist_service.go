package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/watchlist-service/internal/kafka"
	"github.com/yourorg/watchlist-service/internal/model"
	"github.com/yourorg/watchlist-service/internal/storage"
)

// WatchlistService orchestrates watchlist operations: it loads records
// from the store, applies model mutations, persists the result and emits
// a change event. Persistence is always explicit and happens only after
// the mutation validated.
type WatchlistService struct {
	storage  storage.Storage
	producer *kafka.Producer // nil when event publishing is disabled
	logger   *zap.Logger
}

// NewWatchlistService creates a new watchlist service. producer may be
// nil, in which case no events are published.
func NewWatchlistService(st storage.Storage, producer *kafka.Producer, logger *zap.Logger) *WatchlistService {
	return &WatchlistService{
		storage:  st,
		producer: producer,
		logger:   logger,
	}
}

// Create builds a new watchlist and persists it. Unless overwrite is set,
// creating over an existing record fails with storage.ErrWatchlistExists.
func (s *WatchlistService) Create(ctx context.Context, name string, tickers []string, version, date string, metadata map[string]string, overwrite bool) (*model.Watchlist, error) {
	w, err := model.New(name, tickers, version, date, metadata)
	if err != nil {
		return nil, err
	}

	if !overwrite {
		exists, err := s.storage.Exists(ctx, w.Filename())
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", storage.ErrWatchlistExists, w.Filename())
		}
	}

	if err := s.storage.Write(ctx, w.Filename(), w.Record()); err != nil {
		return nil, err
	}

	s.logger.Info("Watchlist created",
		zap.String("watchlist", w.Filename()),
		zap.Int("tickers", len(w.Tickers())))
	s.publish(ctx, kafka.EventCreated, w)

	return w, nil
}

// Get loads a watchlist from the record store.
func (s *WatchlistService) Get(ctx context.Context, name string) (*model.Watchlist, error) {
	filename, err := model.CleanFilename(name)
	if err != nil {
		return nil, err
	}

	rec, err := s.storage.Read(ctx, filename)
	if err != nil {
		return nil, err
	}

	return model.FromRecord(filename, rec)
}

// List returns the filenames of all stored watchlists.
func (s *WatchlistService) List(ctx context.Context) ([]string, error) {
	return s.storage.List(ctx)
}

// Delete removes a watchlist from the record store.
func (s *WatchlistService) Delete(ctx context.Context, name string) error {
	filename, err := model.CleanFilename(name)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, filename); err != nil {
		return err
	}

	s.logger.Info("Watchlist deleted", zap.String("watchlist", filename))
	s.publishName(ctx, kafka.EventDeleted, filename)
	return nil
}

// Archive moves a watchlist out of the active set into the archive.
func (s *WatchlistService) Archive(ctx context.Context, name string) error {
	filename, err := model.CleanFilename(name)
	if err != nil {
		return err
	}

	if err := s.storage.Archive(ctx, filename); err != nil {
		return err
	}

	s.logger.Info("Watchlist archived", zap.String("watchlist", filename))
	s.publishName(ctx, kafka.EventArchived, filename)
	return nil
}

// AddTicker adds a ticker to a stored watchlist and persists the result.
func (s *WatchlistService) AddTicker(ctx context.Context, name, symbol string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.AddTicker(symbol)
	})
}

// DeleteTicker removes a ticker from a stored watchlist.
func (s *WatchlistService) DeleteTicker(ctx context.Context, name, symbol string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.DeleteTicker(symbol)
	})
}

// SetTickers replaces the whole ticker list of a stored watchlist.
func (s *WatchlistService) SetTickers(ctx context.Context, name string, tickers []string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.SetTickers(tickers)
	})
}

// UpdateDate sets the date of a stored watchlist.
func (s *WatchlistService) UpdateDate(ctx context.Context, name, date string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.UpdateDate(date)
	})
}

// UpdateVersion sets the version of a stored watchlist. An empty version
// increments the current whole-number version instead.
func (s *WatchlistService) UpdateVersion(ctx context.Context, name, version string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		if version == "" {
			_, err := w.IncrementVersion()
			return err
		}
		w.UpdateVersion(version)
		return nil
	})
}

// AddMetadata inserts a metadata key into a stored watchlist.
func (s *WatchlistService) AddMetadata(ctx context.Context, name, key, value string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.AddMetadata(key, value)
	})
}

// UpdateMetadata overwrites a metadata key of a stored watchlist.
func (s *WatchlistService) UpdateMetadata(ctx context.Context, name, key, value string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.UpdateMetadata(key, value)
	})
}

// DeleteMetadata removes a metadata key from a stored watchlist.
func (s *WatchlistService) DeleteMetadata(ctx context.Context, name, key string) (*model.Watchlist, error) {
	return s.mutate(ctx, name, func(w *model.Watchlist) error {
		return w.DeleteMetadata(key)
	})
}

// Merge combines two stored watchlists into a new one and persists it.
// Neither input record is touched.
func (s *WatchlistService) Merge(ctx context.Context, name1, name2 string, opts model.MergeOptions) (*model.Watchlist, error) {
	a, err := s.Get(ctx, name1)
	if err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, name2)
	if err != nil {
		return nil, err
	}

	merged, err := model.Merge(a, b, opts)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Write(ctx, merged.Filename(), merged.Record()); err != nil {
		return nil, err
	}

	s.logger.Info("Watchlists merged",
		zap.String("first", a.Filename()),
		zap.String("second", b.Filename()),
		zap.String("result", merged.Filename()),
		zap.Int("tickers", len(merged.Tickers())))
	s.publish(ctx, kafka.EventMerged, merged)

	return merged, nil
}

// mutate loads a watchlist, applies fn and persists the result only when
// fn succeeded. A failed mutation leaves the stored record untouched.
func (s *WatchlistService) mutate(ctx context.Context, name string, fn func(*model.Watchlist) error) (*model.Watchlist, error) {
	w, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := fn(w); err != nil {
		return nil, err
	}

	if err := s.storage.Write(ctx, w.Filename(), w.Record()); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventUpdated, w)
	return w, nil
}

// publish emits a change event for a watchlist. Events are best-effort:
// a publish failure is logged by the producer but never fails the
// already-persisted operation.
func (s *WatchlistService) publish(ctx context.Context, eventType string, w *model.Watchlist) {
	if s.producer == nil {
		return
	}
	_ = s.producer.Publish(ctx, kafka.Event{
		Type:      eventType,
		Watchlist: w.Filename(),
		Version:   w.Version(),
		Date:      w.Date(),
		Tickers:   len(w.Tickers()),
	})
}

func (s *WatchlistService) publishName(ctx context.Context, eventType, filename string) {
	if s.producer == nil {
		return
	}
	_ = s.producer.Publish(ctx, kafka.Event{
		Type:      eventType,
		Watchlist: filename,
	})
}
