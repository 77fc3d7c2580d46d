package mockserver

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mmcdole/marquee/internal/domain"
)

//go:embed seed.toml
var defaultSeed string

// Seed is the initial server state
type Seed struct {
	Titles []SeedTitle `toml:"titles"`
	Users  []SeedUser  `toml:"users"`
}

// SeedTitle is one catalog entry in a seed file
type SeedTitle struct {
	ID           string   `toml:"id"`
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	Duration     string   `toml:"duration"`
	Genres       []string `toml:"genres"`
	ThumbnailURL string   `toml:"thumbnail_url"`
	VideoURL     string   `toml:"video_url"`
}

// SeedUser is a user and their initial favorites
type SeedUser struct {
	ID        string   `toml:"id"`
	Favorites []string `toml:"favorites"`
}

// DefaultSeed returns the built-in sample catalog
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes a TOML seed document
func ParseSeed(data string) (Seed, error) {
	var s Seed
	if _, err := toml.Decode(data, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}
	return s, s.validate()
}

// LoadSeed reads a TOML seed file
func LoadSeed(path string) (Seed, error) {
	var s Seed
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to load seed %s: %w", path, err)
	}
	return s, s.validate()
}

func (s Seed) validate() error {
	seen := make(map[string]bool, len(s.Titles))
	for i, t := range s.Titles {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("title %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("duplicate title id %q", id)
		}
		seen[id] = true
	}
	for _, u := range s.Users {
		if strings.TrimSpace(u.ID) == "" {
			return fmt.Errorf("user has no id")
		}
		for _, fav := range u.Favorites {
			if !seen[fav] {
				return fmt.Errorf("user %q favorites unknown title %q", u.ID, fav)
			}
		}
	}
	return nil
}

// DomainTitles converts the seed catalog to domain titles
func (s Seed) DomainTitles() []domain.Title {
	titles := make([]domain.Title, len(s.Titles))
	for i, t := range s.Titles {
		titles[i] = domain.Title{
			ID:           strings.TrimSpace(t.ID),
			Title:        t.Title,
			Description:  t.Description,
			Duration:     t.Duration,
			Genres:       t.Genres,
			ThumbnailURL: t.ThumbnailURL,
			VideoURL:     t.VideoURL,
		}
	}
	return titles
}
