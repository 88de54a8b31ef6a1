package http_review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infra_memstore "github.com/aakumar2208/tamil-movies-scraper/internal/infra/memstore"
	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type ReviewControllerSuite struct {
	suite.Suite
}

type failingRepo struct{}

func (failingRepo) Load(context.Context, *uuid.UUID) ([]*model.Review, error) {
	return nil, errors.New("db down")
}

func serve(repo Repository, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(repo, WithLogger(logger.Discard())).RegisterRoutes(r.Group("/api/v1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *ReviewControllerSuite) TestListReviews(t provider.T) {
	ctx := context.Background()
	store := infra_memstore.New()
	a := model.Movie{ID: uuid.New(), Title: "A", LetterboxdURL: "https://letterboxd.com/film/a/"}
	b := model.Movie{ID: uuid.New(), Title: "B", LetterboxdURL: "https://letterboxd.com/film/b/"}
	_, err := store.Movies().UpsertMovies(ctx, []model.Movie{a, b})
	assert.NoError(t, err)

	reviews := []model.Review{
		{MovieID: a.ID, Content: "one", Date: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{MovieID: a.ID, Content: "two"},
		{MovieID: b.ID, Content: "three"},
	}
	for i := range reviews {
		reviews[i].ID = reviews[i].NaturalKey()
	}
	_, err = store.Reviews().UpsertReviews(ctx, reviews)
	assert.NoError(t, err)

	w := serve(store.Reviews(), "/api/v1/reviews")
	assert.Equal(t, http.StatusOK, w.Code)
	var all ReviewsListResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 3, all.Total)

	w = serve(store.Reviews(), "/api/v1/reviews?movie_id="+a.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)
	var some ReviewsListResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &some))
	assert.Equal(t, 2, some.Total)
	for _, r := range some.Reviews {
		assert.Equal(t, a.ID, r.MovieID)
		assert.Nil(t, r.SentimentScore)
	}
}

func (s *ReviewControllerSuite) TestBadInput(t provider.T) {
	w := serve(failingRepo{}, "/api/v1/reviews?movie_id=zzz")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(failingRepo{}, "/api/v1/reviews")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReviewControllerSuite(t *testing.T) {
	suite.RunSuite(t, new(ReviewControllerSuite))
}
