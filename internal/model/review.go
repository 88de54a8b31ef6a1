package model

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID             uuid.UUID
	MovieID        uuid.UUID
	Author         *string
	Content        string
	Rating         *float64
	Date           time.Time
	Likes          int
	Comments       int
	LetterboxdURL  string
	SentimentScore *float64
}

// NaturalKey identifies the same review across re-scrapes. The date is left
// out because relative dates drift between runs.
func (r Review) NaturalKey() uuid.UUID {
	author := ""
	if r.Author != nil {
		author = *r.Author
	}
	return NaturalKey(r.MovieID.String(), author, r.Content)
}

type SentimentUpdate struct {
	ReviewID uuid.UUID
	Score    float64
}
