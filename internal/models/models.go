package models

import "time"

// HistoryEntry is one completed try-on kept for re-viewing. The JSON field
// names match the persisted browser format.
type HistoryEntry struct {
	ID         string `json:"id"`
	ImageURL   string `json:"imageUrl"`
	PersonURL  string `json:"personUrl"`
	ClothesURL string `json:"clothesUrl"`
	Timestamp  int64  `json:"timestamp"` // epoch milliseconds
}

// CreatedAt returns the entry timestamp as a time.
func (e HistoryEntry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}
