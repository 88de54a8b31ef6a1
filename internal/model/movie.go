package model

import (
	"time"

	"github.com/google/uuid"
)

const EmptyTitle string = ""

type Movie struct {
	ID            uuid.UUID
	Title         string
	Genre         []string
	ReleaseDate   *time.Time
	AverageRating *float64
	LetterboxdURL string

	OriginalTitle *string
	Synopsis      *string
	Runtime       *int
	Actors        []string
	Studio        []string
	TMDbID        *string
	IMDbID        *string
	TMDbURL       *string
	IMDbURL       *string
}

// HasSource reports whether the movie can be used for metadata and review scraping.
func (m Movie) HasSource() bool {
	return m.LetterboxdURL != ""
}

// MetadataPatch overwrites every enrichment field of a movie.
type MetadataPatch struct {
	OriginalTitle *string
	Synopsis      *string
	Runtime       *int
	Actors        []string
	Genre         []string
	Studio        []string
	ReleaseDate   *time.Time
	TMDbID        *string
	IMDbID        *string
	TMDbURL       *string
	IMDbURL       *string
}

// Apply copies the patch onto m.
func (p MetadataPatch) Apply(m *Movie) {
	m.OriginalTitle = p.OriginalTitle
	m.Synopsis = p.Synopsis
	m.Runtime = p.Runtime
	m.Actors = p.Actors
	m.Genre = p.Genre
	m.Studio = p.Studio
	m.ReleaseDate = p.ReleaseDate
	m.TMDbID = p.TMDbID
	m.IMDbID = p.IMDbID
	m.TMDbURL = p.TMDbURL
	m.IMDbURL = p.IMDbURL
}
