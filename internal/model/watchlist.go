package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extension is the file extension every watchlist record carries.
const Extension = ".toml"

// DateLayout is the wire format for watchlist dates.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Watchlist is an in-memory watchlist record. All mutation goes through
// its methods so the invariants hold: tickers are uppercase and
// duplicate-free, the date is always a valid non-future YYYY-MM-DD string,
// and the filename always ends in the standard extension.
type Watchlist struct {
	filename string
	title    string
	tickers  []string
	version  string
	date     string
	metadata map[string]string
}

// New creates a watchlist from caller-supplied fields. The extension is
// appended to name when missing, tickers are normalized and deduplicated
// in their given order, version defaults to "1" and date defaults to
// today. At least one ticker is required.
func New(name string, tickers []string, version, date string, metadata map[string]string) (*Watchlist, error) {
	filename, err := CleanFilename(name)
	if err != nil {
		return nil, err
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: watchlist %s needs at least one ticker", ErrValidation, filename)
	}
	normalized, err := normalizeTickers(tickers)
	if err != nil {
		return nil, err
	}

	if version == "" {
		version = "1"
	}

	if date == "" {
		date = time.Now().Format(DateLayout)
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	return &Watchlist{
		filename: filename,
		title:    TrimExtension(filename),
		tickers:  normalized,
		version:  version,
		date:     date,
		metadata: copyMetadata(metadata),
	}, nil
}

// FromRecord hydrates a watchlist from a persisted record. The record's
// fields are normalized the same way New normalizes caller input, except
// the date is only checked for format so old records stay loadable.
func FromRecord(filename string, rec *Record) (*Watchlist, error) {
	clean, err := CleanFilename(filename)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeTickers(rec.Stocks)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", clean, err)
	}

	if !datePattern.MatchString(rec.Date) {
		return nil, fmt.Errorf("record %s: %w", clean, ErrInvalidDateFormat)
	}
	if _, err := time.Parse(DateLayout, rec.Date); err != nil {
		return nil, fmt.Errorf("record %s: %w", clean, ErrInvalidDateFormat)
	}

	title := rec.Title
	if title == "" {
		title = TrimExtension(clean)
	}

	version := rec.Version
	if version == "" {
		version = "1"
	}

	return &Watchlist{
		filename: clean,
		title:    title,
		tickers:  normalized,
		version:  version,
		date:     rec.Date,
		metadata: copyMetadata(rec.Metadata),
	}, nil
}

// Filename returns the backing record name, extension included.
func (w *Watchlist) Filename() string {
	return w.filename
}

// Title returns the display name.
func (w *Watchlist) Title() string {
	return w.title
}

// Date returns the current date string.
func (w *Watchlist) Date() string {
	return w.date
}

// UpdateDate replaces the date after validating it is a real YYYY-MM-DD
// date no later than today. On failure the previous date is kept.
func (w *Watchlist) UpdateDate(date string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	w.date = date
	return nil
}

// Version returns the current version label.
func (w *Watchlist) Version() string {
	return w.version
}

// UpdateVersion replaces the version label. No format is enforced.
func (w *Watchlist) UpdateVersion(version string) {
	w.version = version
}

// IncrementVersion bumps a whole-number version label by one. It fails
// when the current version is not an integer; use UpdateVersion for
// dotted or free-form labels.
func (w *Watchlist) IncrementVersion() (string, error) {
	n, err := strconv.Atoi(w.version)
	if err != nil {
		return "", fmt.Errorf("%w: version %q is not a whole number, set it explicitly instead", ErrValidation, w.version)
	}
	w.version = strconv.Itoa(n + 1)
	return w.version, nil
}

// Tickers returns the tickers in insertion order. The slice is a copy.
func (w *Watchlist) Tickers() []string {
	out := make([]string, len(w.tickers))
	copy(out, w.tickers)
	return out
}

// AddTicker appends a ticker, uppercased. Adding a symbol that is already
// present (in any case) is a no-op.
func (w *Watchlist) AddTicker(symbol string) error {
	sym, err := normalizeTicker(symbol)
	if err != nil {
		return err
	}
	if w.hasTicker(sym) {
		return nil
	}
	w.tickers = append(w.tickers, sym)
	return nil
}

// DeleteTicker removes a ticker, matching case-insensitively. Deleting a
// symbol that is not present returns ErrTickerNotFound.
func (w *Watchlist) DeleteTicker(symbol string) error {
	sym, err := normalizeTicker(symbol)
	if err != nil {
		return err
	}
	for i, t := range w.tickers {
		if t == sym {
			w.tickers = append(w.tickers[:i], w.tickers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTickerNotFound, sym)
}

// SetTickers replaces the whole ticker list. The new list must contain at
// least one symbol; it is normalized and deduplicated in the given order.
func (w *Watchlist) SetTickers(tickers []string) error {
	if len(tickers) == 0 {
		return fmt.Errorf("%w: cannot replace tickers of %s with an empty list", ErrValidation, w.filename)
	}
	normalized, err := normalizeTickers(tickers)
	if err != nil {
		return err
	}
	w.tickers = normalized
	return nil
}

// Metadata returns the value stored under key.
func (w *Watchlist) Metadata(key string) (string, error) {
	value, ok := w.metadata[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMetaKeyNotFound, key)
	}
	return value, nil
}

// AddMetadata inserts a new key. Inserting an existing key returns
// ErrDuplicateMetaKey; use UpdateMetadata to overwrite.
func (w *Watchlist) AddMetadata(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: metadata key cannot be empty", ErrValidation)
	}
	if _, ok := w.metadata[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMetaKey, key)
	}
	w.metadata[key] = value
	return nil
}

// UpdateMetadata overwrites the value of an existing key.
func (w *Watchlist) UpdateMetadata(key, value string) error {
	if _, ok := w.metadata[key]; !ok {
		return fmt.Errorf("%w: %s", ErrMetaKeyNotFound, key)
	}
	w.metadata[key] = value
	return nil
}

// DeleteMetadata removes an existing key.
func (w *Watchlist) DeleteMetadata(key string) error {
	if _, ok := w.metadata[key]; !ok {
		return fmt.Errorf("%w: %s", ErrMetaKeyNotFound, key)
	}
	delete(w.metadata, key)
	return nil
}

// Record returns the full current state as a persistable record. The
// returned record shares nothing with the watchlist.
func (w *Watchlist) Record() *Record {
	return &Record{
		Title:    w.title,
		Stocks:   w.Tickers(),
		Version:  w.version,
		Date:     w.date,
		Metadata: copyMetadata(w.metadata),
	}
}

func (w *Watchlist) hasTicker(sym string) bool {
	for _, t := range w.tickers {
		if t == sym {
			return true
		}
	}
	return false
}

// HasExtension reports whether name ends in the standard extension,
// matching case-insensitively ("DOW30.TOML" counts).
func HasExtension(name string) bool {
	return strings.HasSuffix(strings.ToUpper(name), strings.ToUpper(Extension))
}

// CleanFilename validates a watchlist name and appends the standard
// extension when it is missing. It never double-appends.
func CleanFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: watchlist name cannot be empty", ErrValidation)
	}
	if HasExtension(name) {
		return name, nil
	}
	return name + Extension, nil
}

// TrimExtension strips the standard extension from a watchlist filename.
func TrimExtension(name string) string {
	if HasExtension(name) {
		return name[:len(name)-len(Extension)]
	}
	return name
}

func normalizeTicker(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", fmt.Errorf("%w: ticker symbol cannot be empty", ErrValidation)
	}
	return sym, nil
}

func normalizeTickers(tickers []string) ([]string, error) {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		sym, err := normalizeTicker(t)
		if err != nil {
			return nil, err
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}

func copyMetadata(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

func validateDate(date string) error {
	if !datePattern.MatchString(date) {
		return ErrInvalidDateFormat
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return ErrInvalidDateFormat
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return ErrFutureDate
	}
	return nil
}
