package infra_memstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MemstoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *MemstoreSuite) BeforeEach(t provider.T) {
	s.store = New()
	s.ctx = context.Background()
}

func movie(title, url string) model.Movie {
	return model.Movie{ID: model.NaturalKey(url), Title: title, LetterboxdURL: url}
}

func (s *MemstoreSuite) seedMovie(t provider.T) model.Movie {
	m := movie("Vikram", "https://letterboxd.com/film/vikram-2022/")
	_, err := s.store.Movies().UpsertMovies(s.ctx, []model.Movie{m})
	assert.NoError(t, err)
	return m
}

func (s *MemstoreSuite) TestMovieUpsertIsIdempotent(t provider.T) {
	movies := s.store.Movies()
	page := []model.Movie{
		movie("Vikram", "https://letterboxd.com/film/vikram-2022/"),
		movie("Jailer", "https://letterboxd.com/film/jailer/"),
	}

	for i := 0; i < 2; i++ {
		n, err := movies.UpsertMovies(s.ctx, page)
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	}

	all, err := movies.Load(s.ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func (s *MemstoreSuite) TestRelistingKeepsMetadata(t provider.T) {
	movies := s.store.Movies()
	m := s.seedMovie(t)

	runtime := 174
	assert.NoError(t, movies.UpdateMetadata(s.ctx, m.ID, model.MetadataPatch{Runtime: &runtime}))

	rating := 4.1
	again := m
	again.AverageRating = &rating
	_, err := movies.UpsertMovies(s.ctx, []model.Movie{again})
	assert.NoError(t, err)

	got, err := movies.LoadByID(s.ctx, m.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, got.Runtime) {
		assert.Equal(t, 174, *got.Runtime)
	}
	if assert.NotNil(t, got.AverageRating) {
		assert.Equal(t, 4.1, *got.AverageRating)
	}
}

func (s *MemstoreSuite) TestMissingMovie(t provider.T) {
	_, err := s.store.Movies().LoadByID(s.ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.store.Movies().UpdateMetadata(s.ctx, uuid.New(), model.MetadataPatch{}), model.ErrNotFound)
}

func (s *MemstoreSuite) TestReviewRequiresMovie(t provider.T) {
	r := model.Review{MovieID: uuid.New(), Content: "orphan"}
	r.ID = r.NaturalKey()
	_, err := s.store.Reviews().UpsertReviews(s.ctx, []model.Review{r})
	assert.ErrorIs(t, err, model.ErrPersistence)
}

func (s *MemstoreSuite) TestRescrapeKeepsSentiment(t provider.T) {
	m := s.seedMovie(t)
	reviews := s.store.Reviews()

	r := model.Review{MovieID: m.ID, Content: "Mass!", Date: time.Now(), Likes: 1}
	r.ID = r.NaturalKey()
	_, err := reviews.UpsertReviews(s.ctx, []model.Review{r})
	assert.NoError(t, err)
	assert.NoError(t, reviews.UpdateSentiments(s.ctx, []model.SentimentUpdate{{ReviewID: r.ID, Score: 0.9}}))

	r.Likes = 7
	_, err = reviews.UpsertReviews(s.ctx, []model.Review{r})
	assert.NoError(t, err)

	got, err := reviews.Load(s.ctx, &m.ID)
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, 7, got[0].Likes)
		if assert.NotNil(t, got[0].SentimentScore) {
			assert.Equal(t, 0.9, *got[0].SentimentScore)
		}
	}
}

func (s *MemstoreSuite) TestCursorPagination(t provider.T) {
	m := s.seedMovie(t)
	reviews := s.store.Reviews()

	batch := make([]model.Review, 0, 25)
	for i := 0; i < 25; i++ {
		r := model.Review{MovieID: m.ID, Content: fmt.Sprintf("review %d", i)}
		r.ID = r.NaturalKey()
		batch = append(batch, r)
	}
	_, err := reviews.UpsertReviews(s.ctx, batch)
	assert.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	cursor := uuid.Nil
	pages := 0
	for {
		page, err := reviews.ListForScoring(s.ctx, cursor, 10, true)
		assert.NoError(t, err)
		pages++
		for _, r := range page {
			assert.False(t, seen[r.ID])
			seen[r.ID] = true
			cursor = r.ID
		}
		if len(page) < 10 {
			break
		}
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 25)

	assert.NoError(t, reviews.UpdateSentiments(s.ctx, []model.SentimentUpdate{{ReviewID: batch[0].ID, Score: 0.1}}))
	unscored, err := reviews.ListForScoring(s.ctx, uuid.Nil, 100, true)
	assert.NoError(t, err)
	assert.Len(t, unscored, 24)
	everything, err := reviews.ListForScoring(s.ctx, uuid.Nil, 100, false)
	assert.NoError(t, err)
	assert.Len(t, everything, 25)
}

func TestMemstoreSuite(t *testing.T) {
	suite.RunSuite(t, new(MemstoreSuite))
}
