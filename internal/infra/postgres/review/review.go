package infra_postgres_review

import (
	"context"
	"fmt"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrReviewNotFound = fmt.Errorf("review %w", model.ErrNotFound)
)

const reviewColumns = `id, movie_id, author, content, rating, date, likes, comments, letterboxd_url, sentiment_score`

type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// UpsertReviews stores reviews keyed on their natural key id. A re-scrape
// refreshes counters and rating but never clears a sentiment score.
func (r *Repository) UpsertReviews(ctx context.Context, reviews []model.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO reviews (id, movie_id, author, content, rating, date, likes, comments, letterboxd_url)
		VALUES (:id, :movie_id, :author, :content, :rating, :date, :likes, :comments, :letterboxd_url)
		ON CONFLICT (id) DO UPDATE SET
			rating = EXCLUDED.rating,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			letterboxd_url = EXCLUDED.letterboxd_url
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin tx: %w", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	for _, rv := range reviews {
		if _, err := tx.NamedExecContext(ctx, query, FromDomain(rv)); err != nil {
			return 0, fmt.Errorf("%w: failed to store review %s: %w", model.ErrPersistence, rv.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit reviews: %w", model.ErrPersistence, err)
	}
	return len(reviews), nil
}

// Load returns every review, or only those of movieID when it is set.
func (r *Repository) Load(ctx context.Context, movieID *uuid.UUID) ([]*model.Review, error) {
	var (
		reviewsDB []ReviewDB
		err       error
	)
	if movieID != nil {
		err = r.db.SelectContext(ctx, &reviewsDB,
			`SELECT `+reviewColumns+` FROM reviews WHERE movie_id = $1 ORDER BY id`, *movieID)
	} else {
		err = r.db.SelectContext(ctx, &reviewsDB, `SELECT `+reviewColumns+` FROM reviews ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query reviews: %w", model.ErrPersistence, err)
	}

	reviews := make([]*model.Review, len(reviewsDB))
	for i, reviewDB := range reviewsDB {
		rv := reviewDB.ToDomain()
		reviews[i] = &rv
	}
	return reviews, nil
}

// ListForScoring pages through reviews by ascending id, starting after the
// given cursor.
func (r *Repository) ListForScoring(ctx context.Context, after uuid.UUID, limit int, unscoredOnly bool) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id > $1`
	if unscoredOnly {
		query += ` AND sentiment_score IS NULL`
	}
	query += ` ORDER BY id LIMIT $2`

	var reviewsDB []ReviewDB
	if err := r.db.SelectContext(ctx, &reviewsDB, query, after, limit); err != nil {
		return nil, fmt.Errorf("%w: failed to page reviews: %w", model.ErrPersistence, err)
	}

	reviews := make([]model.Review, len(reviewsDB))
	for i, reviewDB := range reviewsDB {
		reviews[i] = reviewDB.ToDomain()
	}
	return reviews, nil
}

func (r *Repository) UpdateSentiments(ctx context.Context, updates []model.SentimentUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin tx: %w", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		result, err := tx.ExecContext(ctx, `UPDATE reviews SET sentiment_score = $2 WHERE id = $1`, u.ReviewID, u.Score)
		if err != nil {
			return fmt.Errorf("%w: failed to update sentiment: %w", model.ErrPersistence, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: failed to get rows affected: %w", model.ErrPersistence, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrReviewNotFound, u.ReviewID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit sentiments: %w", model.ErrPersistence, err)
	}
	return nil
}
