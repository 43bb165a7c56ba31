package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// GenreRepository persists artist genre lookups in the artists table.
type GenreRepository struct {
	db *sql.DB
}

// NewGenreRepository creates a new [GenreRepository] with the given database connection
func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Get retrieves the cached genres for an artist.
//
// The second return value reports whether the artist was found at all; a
// found artist with no genres is a valid cached result and must not trigger
// another remote lookup.
func (r *GenreRepository) Get(artistID string) ([]string, bool, error) {
	query := `
		SELECT genres FROM artists WHERE id = ?
	`

	var genres string
	err := r.db.QueryRow(query, artistID).Scan(&genres)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query artist genres: %w", err)
	}

	return splitGenres(genres), true, nil
}

// Put stores or replaces an artist's genre list.
func (r *GenreRepository) Put(artistID, name string, genres []string) error {
	query := `
		INSERT INTO artists (id, name, genres, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, genres = excluded.genres, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(query, artistID, name, strings.Join(genres, ","), now, now)
	if err != nil {
		return fmt.Errorf("failed to store artist genres: %w", err)
	}
	return nil
}

// Count returns the number of cached artists.
func (r *GenreRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}
	return count, nil
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
