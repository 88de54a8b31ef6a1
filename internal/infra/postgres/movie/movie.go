package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMovieNotFound = fmt.Errorf("movie %w", model.ErrNotFound)
)

const movieColumns = `id, title, genre, release_date, average_rating, letterboxd_url,
	original_title, synopsis, runtime, actors, studio, tmdb_id, imdb_id, tmdb_url, imdb_url`

type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// UpsertMovies stores listing entries keyed on letterboxd_url. Existing rows
// keep their id and enrichment fields.
func (r *Repository) UpsertMovies(ctx context.Context, movies []model.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO movies (id, title, genre, average_rating, letterboxd_url, actors, studio)
		VALUES (:id, :title, :genre, :average_rating, :letterboxd_url, :actors, :studio)
		ON CONFLICT (letterboxd_url) DO UPDATE SET
			title = EXCLUDED.title,
			average_rating = EXCLUDED.average_rating
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin tx: %w", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	for _, mv := range movies {
		if _, err := tx.NamedExecContext(ctx, query, FromDomain(mv)); err != nil {
			return 0, fmt.Errorf("%w: failed to store movie %q: %w", model.ErrPersistence, mv.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit movies: %w", model.ErrPersistence, err)
	}
	return len(movies), nil
}

func (r *Repository) Load(ctx context.Context) ([]*model.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY id`

	var moviesDB []MovieDB
	if err := r.db.SelectContext(ctx, &moviesDB, query); err != nil {
		return nil, fmt.Errorf("%w: failed to query movies: %w", model.ErrPersistence, err)
	}

	movies := make([]*model.Movie, len(moviesDB))
	for i, movieDB := range moviesDB {
		m := movieDB.ToDomain()
		movies[i] = &m
	}
	return movies, nil
}

func (r *Repository) LoadByID(ctx context.Context, ID uuid.UUID) (model.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	var movieDB MovieDB
	err := r.db.GetContext(ctx, &movieDB, query, ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, fmt.Errorf("%w: failed to load movie by id: %w", model.ErrPersistence, err)
	}

	return movieDB.ToDomain(), nil
}

// UpdateMetadata overwrites every enrichment column of one movie.
func (r *Repository) UpdateMetadata(ctx context.Context, ID uuid.UUID, p model.MetadataPatch) error {
	query := `
		UPDATE movies
		SET original_title = :original_title, synopsis = :synopsis, runtime = :runtime,
			actors = :actors, genre = :genre, studio = :studio, release_date = :release_date,
			tmdb_id = :tmdb_id, imdb_id = :imdb_id, tmdb_url = :tmdb_url, imdb_url = :imdb_url
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, patchFromDomain(ID, p))
	if err != nil {
		return fmt.Errorf("%w: failed to update movie: %w", model.ErrPersistence, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", model.ErrPersistence, err)
	}

	if rowsAffected == 0 {
		return ErrMovieNotFound
	}

	return nil
}
