package infra_postgres_review

import (
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
)

type ReviewDB struct {
	ID             uuid.UUID `db:"id"`
	MovieID        uuid.UUID `db:"movie_id"`
	Author         *string   `db:"author"`
	Content        string    `db:"content"`
	Rating         *float64  `db:"rating"`
	Date           time.Time `db:"date"`
	Likes          int       `db:"likes"`
	Comments       int       `db:"comments"`
	LetterboxdURL  *string   `db:"letterboxd_url"`
	SentimentScore *float64  `db:"sentiment_score"`
}

func (r *ReviewDB) ToDomain() model.Review {
	rv := model.Review{
		ID:             r.ID,
		MovieID:        r.MovieID,
		Author:         r.Author,
		Content:        r.Content,
		Rating:         r.Rating,
		Date:           r.Date,
		Likes:          r.Likes,
		Comments:       r.Comments,
		SentimentScore: r.SentimentScore,
	}
	if r.LetterboxdURL != nil {
		rv.LetterboxdURL = *r.LetterboxdURL
	}
	return rv
}

func FromDomain(rv model.Review) ReviewDB {
	dto := ReviewDB{
		ID:             rv.ID,
		MovieID:        rv.MovieID,
		Author:         rv.Author,
		Content:        rv.Content,
		Rating:         rv.Rating,
		Date:           rv.Date,
		Likes:          rv.Likes,
		Comments:       rv.Comments,
		SentimentScore: rv.SentimentScore,
	}
	if rv.LetterboxdURL != "" {
		u := rv.LetterboxdURL
		dto.LetterboxdURL = &u
	}
	return dto
}
