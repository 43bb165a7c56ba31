package repositories

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/dayeggpi/spotiup/internal/services"
	"github.com/dayeggpi/spotiup/internal/shared"
)

// GenreCache resolves artist genres through a two-level cache: an in-memory
// map for the current run and the artists table across runs. Misses fall
// through to the catalog and are written back to both levels.
//
// It implements backup.GenreProvider. The cache is owned by whoever builds
// the engine and passed by reference; there is no process-wide singleton.
type GenreCache struct {
	repo    *GenreRepository
	catalog services.Catalog
	memory  map[string][]string
	logger  *log.Logger
}

// NewGenreCache creates a GenreCache over the repository and catalog.
//
// repo may be nil, leaving only the in-memory level; lookups then survive a
// run but not a restart.
func NewGenreCache(repo *GenreRepository, catalog services.Catalog, logger *log.Logger) *GenreCache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &GenreCache{
		repo:    repo,
		catalog: catalog,
		memory:  make(map[string][]string),
		logger:  logger,
	}
}

// Genres returns the genre list for an artist, consulting memory, then the
// database, then the catalog.
func (c *GenreCache) Genres(ctx context.Context, artistID string) ([]string, error) {
	if artistID == "" {
		return nil, nil
	}

	if genres, ok := c.memory[artistID]; ok {
		return genres, nil
	}

	if c.repo != nil {
		genres, found, err := c.repo.Get(artistID)
		if err != nil {
			c.logger.Warn("genre cache read failed", "artist", artistID, "error", err)
		} else if found {
			c.memory[artistID] = genres
			return genres, nil
		}
	}

	genres, err := c.catalog.ArtistGenres(ctx, artistID)
	if err != nil {
		return nil, err
	}

	c.memory[artistID] = genres
	if c.repo != nil {
		if err := c.repo.Put(artistID, "", genres); err != nil {
			c.logger.Warn("genre cache write failed", "artist", artistID, "error", err)
		}
	}
	return genres, nil
}
