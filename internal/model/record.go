package model

// Record is the persisted shape of a watchlist: the TOML document stored
// on disk by the record store. Metadata lives in its own table so free-form
// keys can never collide with the fixed record fields.
type Record struct {
	Title    string            `toml:"title" json:"title"`
	Stocks   []string          `toml:"stocks" json:"stocks"`
	Version  string            `toml:"version" json:"version"`
	Date     string            `toml:"date" json:"date"`
	Metadata map[string]string `toml:"metadata,omitempty" json:"metadata,omitempty"`
}
