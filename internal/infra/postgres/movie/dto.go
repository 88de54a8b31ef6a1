package infra_postgres_movie

import (
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MovieDB struct {
	ID            uuid.UUID      `db:"id"`
	Title         string         `db:"title"`
	Genre         pq.StringArray `db:"genre"`
	ReleaseDate   *time.Time     `db:"release_date"`
	AverageRating *float64       `db:"average_rating"`
	LetterboxdURL *string        `db:"letterboxd_url"`
	OriginalTitle *string        `db:"original_title"`
	Synopsis      *string        `db:"synopsis"`
	Runtime       *int           `db:"runtime"`
	Actors        pq.StringArray `db:"actors"`
	Studio        pq.StringArray `db:"studio"`
	TMDbID        *string        `db:"tmdb_id"`
	IMDbID        *string        `db:"imdb_id"`
	TMDbURL       *string        `db:"tmdb_url"`
	IMDbURL       *string        `db:"imdb_url"`
}

func (m *MovieDB) ToDomain() model.Movie {
	mv := model.Movie{
		ID:            m.ID,
		Title:         m.Title,
		Genre:         nonNil(m.Genre),
		ReleaseDate:   m.ReleaseDate,
		AverageRating: m.AverageRating,
		OriginalTitle: m.OriginalTitle,
		Synopsis:      m.Synopsis,
		Runtime:       m.Runtime,
		Actors:        nonNil(m.Actors),
		Studio:        nonNil(m.Studio),
		TMDbID:        m.TMDbID,
		IMDbID:        m.IMDbID,
		TMDbURL:       m.TMDbURL,
		IMDbURL:       m.IMDbURL,
	}
	if m.LetterboxdURL != nil {
		mv.LetterboxdURL = *m.LetterboxdURL
	}
	return mv
}

func FromDomain(mv model.Movie) MovieDB {
	dto := MovieDB{
		ID:            mv.ID,
		Title:         mv.Title,
		Genre:         pq.StringArray(nonNil(mv.Genre)),
		ReleaseDate:   mv.ReleaseDate,
		AverageRating: mv.AverageRating,
		OriginalTitle: mv.OriginalTitle,
		Synopsis:      mv.Synopsis,
		Runtime:       mv.Runtime,
		Actors:        pq.StringArray(nonNil(mv.Actors)),
		Studio:        pq.StringArray(nonNil(mv.Studio)),
		TMDbID:        mv.TMDbID,
		IMDbID:        mv.IMDbID,
		TMDbURL:       mv.TMDbURL,
		IMDbURL:       mv.IMDbURL,
	}
	if mv.LetterboxdURL != "" {
		u := mv.LetterboxdURL
		dto.LetterboxdURL = &u
	}
	return dto
}

// patchDB carries a metadata patch for a single movie.
type patchDB struct {
	ID            uuid.UUID      `db:"id"`
	OriginalTitle *string        `db:"original_title"`
	Synopsis      *string        `db:"synopsis"`
	Runtime       *int           `db:"runtime"`
	Actors        pq.StringArray `db:"actors"`
	Genre         pq.StringArray `db:"genre"`
	Studio        pq.StringArray `db:"studio"`
	ReleaseDate   *time.Time     `db:"release_date"`
	TMDbID        *string        `db:"tmdb_id"`
	IMDbID        *string        `db:"imdb_id"`
	TMDbURL       *string        `db:"tmdb_url"`
	IMDbURL       *string        `db:"imdb_url"`
}

func patchFromDomain(id uuid.UUID, p model.MetadataPatch) patchDB {
	return patchDB{
		ID:            id,
		OriginalTitle: p.OriginalTitle,
		Synopsis:      p.Synopsis,
		Runtime:       p.Runtime,
		Actors:        pq.StringArray(nonNil(p.Actors)),
		Genre:         pq.StringArray(nonNil(p.Genre)),
		Studio:        pq.StringArray(nonNil(p.Studio)),
		ReleaseDate:   p.ReleaseDate,
		TMDbID:        p.TMDbID,
		IMDbID:        p.IMDbID,
		TMDbURL:       p.TMDbURL,
		IMDbURL:       p.IMDbURL,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
