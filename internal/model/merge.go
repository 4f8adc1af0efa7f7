package model

import (
	"fmt"
	"time"
)

// MetaSource selects which input watchlist a merge copies metadata from.
type MetaSource int

const (
	// MetaNone gives the merged watchlist empty metadata.
	MetaNone MetaSource = iota
	// MetaFromFirst copies the first watchlist's metadata.
	MetaFromFirst
	// MetaFromSecond copies the second watchlist's metadata.
	MetaFromSecond
)

// MergeOptions carries the caller-controlled parameters of a merge. The
// zero value derives the name from the inputs, stamps today's date, sets
// version "1" and copies no metadata.
type MergeOptions struct {
	// Name of the resulting watchlist. Empty derives "{a}_{b}.toml" from
	// the input filenames; a nonempty name gets the extension appended
	// when missing.
	Name string
	// Version label for the result. Empty defaults to "1".
	Version string
	// Date for the result, YYYY-MM-DD. Empty defaults to today; anything
	// else is validated like Watchlist.UpdateDate.
	Date string
	// MetaSource picks where the result's metadata comes from.
	MetaSource MetaSource
}

// Merge combines two watchlists into a new one. The result's tickers are
// the union of both inputs: a's tickers in their original order, then b's
// tickers not already present, in theirs. Neither input is mutated, and no
// result is returned on any validation failure.
func Merge(a, b *Watchlist, opts MergeOptions) (*Watchlist, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: merge requires two watchlists", ErrValidation)
	}

	name := opts.Name
	if name == "" {
		name = TrimExtension(a.filename) + "_" + TrimExtension(b.filename) + Extension
	}
	filename, err := CleanFilename(name)
	if err != nil {
		return nil, err
	}

	date := opts.Date
	if date == "" {
		date = time.Now().Format(DateLayout)
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	version := opts.Version
	if version == "" {
		version = "1"
	}

	var metadata map[string]string
	switch opts.MetaSource {
	case MetaNone:
	case MetaFromFirst:
		metadata = a.metadata
	case MetaFromSecond:
		metadata = b.metadata
	default:
		return nil, fmt.Errorf("%w, got %d", ErrInvalidMergeOption, opts.MetaSource)
	}

	tickers := make([]string, 0, len(a.tickers)+len(b.tickers))
	seen := make(map[string]bool, len(a.tickers)+len(b.tickers))
	for _, t := range a.tickers {
		seen[t] = true
		tickers = append(tickers, t)
	}
	for _, t := range b.tickers {
		if seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}

	return &Watchlist{
		filename: filename,
		title:    TrimExtension(filename),
		tickers:  tickers,
		version:  version,
		date:     date,
		metadata: copyMetadata(metadata),
	}, nil
}
