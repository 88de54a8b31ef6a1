package infra_memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
)

var (
	ErrMovieNotFound  = fmt.Errorf("movie %w", model.ErrNotFound)
	ErrReviewNotFound = fmt.Errorf("review %w", model.ErrNotFound)
)

// Store keeps movies and reviews in process memory with the same upsert
// semantics as the postgres repositories.
type Store struct {
	mu      sync.RWMutex
	movies  map[uuid.UUID]model.Movie
	byURL   map[string]uuid.UUID
	reviews map[uuid.UUID]model.Review
}

func New() *Store {
	return &Store{
		movies:  make(map[uuid.UUID]model.Movie),
		byURL:   make(map[string]uuid.UUID),
		reviews: make(map[uuid.UUID]model.Review),
	}
}

type Movies struct{ s *Store }

type Reviews struct{ s *Store }

func (s *Store) Movies() *Movies {
	return &Movies{s: s}
}

func (s *Store) Reviews() *Reviews {
	return &Reviews{s: s}
}

func (m *Movies) UpsertMovies(ctx context.Context, movies []model.Movie) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mv := range movies {
		if id, ok := s.byURL[mv.LetterboxdURL]; ok && mv.LetterboxdURL != "" {
			existing := s.movies[id]
			existing.Title = mv.Title
			existing.AverageRating = mv.AverageRating
			s.movies[id] = existing
			continue
		}
		if mv.ID == uuid.Nil {
			mv.ID = uuid.New()
		}
		s.movies[mv.ID] = mv
		if mv.LetterboxdURL != "" {
			s.byURL[mv.LetterboxdURL] = mv.ID
		}
	}
	return len(movies), nil
}

func (m *Movies) Load(ctx context.Context) ([]*model.Movie, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Movie, 0, len(s.movies))
	for _, mv := range s.movies {
		mv := mv
		out = append(out, &mv)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (m *Movies) LoadByID(ctx context.Context, ID uuid.UUID) (model.Movie, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	mv, ok := s.movies[ID]
	if !ok {
		return model.Movie{}, ErrMovieNotFound
	}
	return mv, nil
}

func (m *Movies) UpdateMetadata(ctx context.Context, ID uuid.UUID, p model.MetadataPatch) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	mv, ok := s.movies[ID]
	if !ok {
		return ErrMovieNotFound
	}
	p.Apply(&mv)
	s.movies[ID] = mv
	return nil
}

func (r *Reviews) UpsertReviews(ctx context.Context, reviews []model.Review) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rv := range reviews {
		if _, ok := s.movies[rv.MovieID]; !ok {
			return 0, fmt.Errorf("%w: review %s references unknown movie %s", model.ErrPersistence, rv.ID, rv.MovieID)
		}
	}

	for _, rv := range reviews {
		if existing, ok := s.reviews[rv.ID]; ok {
			existing.Rating = rv.Rating
			existing.Likes = rv.Likes
			existing.Comments = rv.Comments
			existing.LetterboxdURL = rv.LetterboxdURL
			s.reviews[rv.ID] = existing
			continue
		}
		s.reviews[rv.ID] = rv
	}
	return len(reviews), nil
}

func (r *Reviews) Load(ctx context.Context, movieID *uuid.UUID) ([]*model.Review, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Review, 0, len(s.reviews))
	for _, rv := range s.reviews {
		if movieID != nil && rv.MovieID != *movieID {
			continue
		}
		rv := rv
		out = append(out, &rv)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (r *Reviews) ListForScoring(ctx context.Context, after uuid.UUID, limit int, unscoredOnly bool) ([]model.Review, error) {
	all, err := r.Load(ctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]model.Review, 0, limit)
	for _, rv := range all {
		if bytes.Compare(rv.ID[:], after[:]) <= 0 {
			continue
		}
		if unscoredOnly && rv.SentimentScore != nil {
			continue
		}
		out = append(out, *rv)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Reviews) UpdateSentiments(ctx context.Context, updates []model.SentimentUpdate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		if _, ok := s.reviews[u.ReviewID]; !ok {
			return fmt.Errorf("%w: %s", ErrReviewNotFound, u.ReviewID)
		}
	}
	for _, u := range updates {
		rv := s.reviews[u.ReviewID]
		score := u.Score
		rv.SentimentScore = &score
		s.reviews[u.ReviewID] = rv
	}
	return nil
}
