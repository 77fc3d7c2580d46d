package domain

// Source identifies which part of the client state changed
type Source string

const (
	SourceCatalog   Source = "catalog"
	SourceDetail    Source = "detail"
	SourceFeatured  Source = "featured"
	SourceFavorites Source = "favorites"
	SourceModal     Source = "modal"
	SourceSearch    Source = "search"
)

// Change notifies the presentation layer that it should re-read state.
// It carries no data; readers call the synchronous accessors.
type Change struct {
	Source Source
	Key    string // Title ID for detail changes, user ID for favorites
}

// Observer receives change notifications.
type Observer interface {
	OnChange(change Change)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Change)

func (f ObserverFunc) OnChange(c Change) { f(c) }

// NoOpObserver discards changes (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnChange(Change) {}
