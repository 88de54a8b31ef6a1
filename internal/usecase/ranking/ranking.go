package usecase_ranking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
)

const (
	sentimentWeight = 0.6
	likesWeight     = 0.25
	commentsWeight  = 0.15
)

type MovieRepository interface {
	Load(ctx context.Context) ([]*model.Movie, error)
}

type ReviewRepository interface {
	Load(ctx context.Context, movieID *uuid.UUID) ([]*model.Review, error)
}

type Usecase struct {
	movies  MovieRepository
	reviews ReviewRepository
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(movies MovieRepository, reviews ReviewRepository, opts ...Option) *Usecase {
	u := &Usecase{
		movies:  movies,
		reviews: reviews,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Rankings loads the current movies and reviews and ranks them.
func (u *Usecase) Rankings(ctx context.Context) ([]model.RankingEntry, error) {
	movies, err := u.movies.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load movies: %w", model.ErrPersistence, err)
	}
	reviews, err := u.reviews.Load(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: load reviews: %w", model.ErrPersistence, err)
	}

	entries := Rank(movies, reviews)
	u.logger.Info("movies ranked", slog.Int("movies", len(entries)), slog.Int("reviews", len(reviews)))
	return entries, nil
}

type tally struct {
	count    int
	scored   int
	scoreSum float64
	likes    int
	comments int
}

// Rank scores every movie as
//
//	0.6*avg_sentiment + 0.25*likes/global_likes + 0.15*comments/global_comments
//
// where the global totals run over all reviews and are floored at 1. The
// result is sorted by score, descending; equal scores keep the order of
// movies.
func Rank(movies []*model.Movie, reviews []*model.Review) []model.RankingEntry {
	byMovie := make(map[uuid.UUID]*tally, len(movies))
	globalLikes, globalComments := 0, 0
	for _, r := range reviews {
		globalLikes += r.Likes
		globalComments += r.Comments

		t, ok := byMovie[r.MovieID]
		if !ok {
			t = &tally{}
			byMovie[r.MovieID] = t
		}
		t.count++
		t.likes += r.Likes
		t.comments += r.Comments
		if r.SentimentScore != nil {
			t.scored++
			t.scoreSum += *r.SentimentScore
		}
	}
	likesDenom := float64(max(globalLikes, 1))
	commentsDenom := float64(max(globalComments, 1))

	entries := make([]model.RankingEntry, 0, len(movies))
	for _, m := range movies {
		t, ok := byMovie[m.ID]
		if !ok {
			t = &tally{}
		}
		avg := 0.0
		if t.scored > 0 {
			avg = t.scoreSum / float64(t.scored)
		}
		score := sentimentWeight*avg +
			likesWeight*float64(t.likes)/likesDenom +
			commentsWeight*float64(t.comments)/commentsDenom

		entries = append(entries, model.RankingEntry{
			ID:               m.ID,
			Title:            m.Title,
			ReviewCount:      t.count,
			AverageSentiment: round3(avg),
			TotalLikes:       t.likes,
			TotalComments:    t.comments,
			RankingScore:     round3(score),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RankingScore > entries[j].RankingScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
