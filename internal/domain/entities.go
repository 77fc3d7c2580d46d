package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// Title is a catalog entry. The client never mutates a Title.
type Title struct {
	ID           string   // Server-specific unique identifier
	Title        string   // Display title
	Description  string   // Synopsis shown in the info overlay
	Duration     string   // Duration label as provided by the server, e.g. "2h 10m"
	Genres       []string // Genre labels
	ThumbnailURL string   // Poster/thumbnail image URL
	VideoURL     string   // Playable media URL
}

// GenreLabel returns the genres joined for display
func (t Title) GenreLabel() string {
	return strings.Join(t.Genres, ", ")
}

// FavoriteSet is the set of title IDs favorited by the current user.
// Values are treated as immutable: With and Without return copies.
type FavoriteSet struct {
	ids map[string]struct{}
}

// NewFavoriteSet builds a set from the given IDs
func NewFavoriteSet(ids ...string) FavoriteSet {
	s := FavoriteSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set
func (s FavoriteSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of favorites
func (s FavoriteSet) Len() int {
	return len(s.ids)
}

// With returns a copy of the set including id
func (s FavoriteSet) With(id string) FavoriteSet {
	out := s.clone()
	out.ids[id] = struct{}{}
	return out
}

// Without returns a copy of the set excluding id
func (s FavoriteSet) Without(id string) FavoriteSet {
	out := s.clone()
	delete(out.ids, id)
	return out
}

// WithMembership returns a copy of the set where id is present iff member is true
func (s FavoriteSet) WithMembership(id string, member bool) FavoriteSet {
	if member {
		return s.With(id)
	}
	return s.Without(id)
}

// IDs returns the members in sorted order
func (s FavoriteSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both sets hold the same IDs
func (s FavoriteSet) Equal(other FavoriteSet) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s FavoriteSet) clone() FavoriteSet {
	out := FavoriteSet{ids: make(map[string]struct{}, len(s.ids)+1)}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of IDs
func (s FavoriteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of IDs
func (s *FavoriteSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewFavoriteSet(ids...)
	return nil
}
