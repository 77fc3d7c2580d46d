package domain

import "time"

// Snapshot persists the last known catalog state between runs.
// Stores hydrate from it so stale data can be shown while revalidating.
type Snapshot interface {
	GetCatalog() ([]Title, time.Time, bool)
	SaveCatalog(titles []Title, fetchedAt time.Time) error

	GetTitle(id string) (Title, time.Time, bool)
	SaveTitle(title Title, fetchedAt time.Time) error

	InvalidateAll()
	Close() error
}

// NoSnapshot is a Snapshot that remembers nothing (for testing/memory-only runs).
type NoSnapshot struct{}

func (NoSnapshot) GetCatalog() ([]Title, time.Time, bool)  { return nil, time.Time{}, false }
func (NoSnapshot) SaveCatalog([]Title, time.Time) error     { return nil }
func (NoSnapshot) GetTitle(string) (Title, time.Time, bool) { return Title{}, time.Time{}, false }
func (NoSnapshot) SaveTitle(Title, time.Time) error         { return nil }
func (NoSnapshot) InvalidateAll()                           {}
func (NoSnapshot) Close() error                             { return nil }
