package model

import "github.com/google/uuid"

type RankingEntry struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ReviewCount      int       `json:"review_count"`
	AverageSentiment float64   `json:"average_sentiment"`
	TotalLikes       int       `json:"total_likes"`
	TotalComments    int       `json:"total_comments"`
	RankingScore     float64   `json:"ranking_score"`
	Rank             int       `json:"rank"`
}
