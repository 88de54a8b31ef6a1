package http_scraping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	http_common "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/common"
	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type crawlerStub struct {
	start, total int
	movieID      *uuid.UUID
	err          error
}

func (c *crawlerStub) ScrapeListing(_ context.Context, start, total int) (model.ListingSummary, error) {
	c.start, c.total = start, total
	return model.ListingSummary{Pages: total, MoviesStored: 72}, c.err
}

func (c *crawlerStub) BackfillMetadata(context.Context) (model.MetadataSummary, error) {
	return model.MetadataSummary{Total: 3, Completed: 2, Failed: 1}, c.err
}

func (c *crawlerStub) BackfillReviews(_ context.Context, movieID *uuid.UUID) (model.ReviewSummary, error) {
	c.movieID = movieID
	return model.ReviewSummary{TotalMovies: 1, TotalReviews: 12}, c.err
}

type analyzerStub struct {
	err error
}

func (a analyzerStub) Run(context.Context) (model.AnalysisSummary, error) {
	return model.AnalysisSummary{ProcessedReviews: 30, Batches: 1}, a.err
}

type ScrapingControllerSuite struct {
	suite.Suite
}

func router(crawler Crawler, analyzer Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(crawler, analyzer, WithLogger(logger.Discard())).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func (s *ScrapingControllerSuite) TestScrapeMovies(t provider.T) {
	tt := []struct {
		name       string
		query      string
		wantStatus int
		wantStart  int
		wantTotal  int
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantStart: 1, wantTotal: 1},
		{name: "explicit range", query: "?start_page=3&total_pages=5", wantStatus: http.StatusOK, wantStart: 3, wantTotal: 5},
		{name: "zero pages", query: "?total_pages=0", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?start_page=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t provider.T) {
			crawler := &crawlerStub{}
			w := do(router(crawler, analyzerStub{}), http.MethodPost, "/api/v1/scraping/movies"+tc.query)
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tc.wantStart, crawler.start)
			assert.Equal(t, tc.wantTotal, crawler.total)

			var got map[string]any
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, float64(72), got["movies_stored"])
			assert.Contains(t, got, "elapsed")
		})
	}
}

func (s *ScrapingControllerSuite) TestReviewsForOneMovie(t provider.T) {
	crawler := &crawlerStub{}
	r := router(crawler, analyzerStub{})
	id := uuid.New()

	w := do(r, http.MethodPost, fmt.Sprintf("/api/v1/scraping/reviews/%s", id))
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, crawler.movieID) {
		assert.Equal(t, id, *crawler.movieID)
	}

	w = do(r, http.MethodPost, "/api/v1/scraping/reviews")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, crawler.movieID)

	w = do(r, http.MethodPost, "/api/v1/scraping/reviews/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *ScrapingControllerSuite) TestErrorsMapToStatus(t provider.T) {
	tt := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing movie", err: fmt.Errorf("movie %w", model.ErrNotFound), want: http.StatusNotFound},
		{name: "store down", err: fmt.Errorf("%w: boom", model.ErrPersistence), want: http.StatusInternalServerError},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t provider.T) {
			w := do(router(&crawlerStub{err: tc.err}, analyzerStub{}), http.MethodPost, "/api/v1/scraping/reviews/"+uuid.NewString())
			assert.Equal(t, tc.want, w.Code)

			var resp http_common.ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.want, resp.Code)
			assert.Equal(t, tc.err.Error(), resp.Message)
		})
	}
}

func (s *ScrapingControllerSuite) TestAnalyze(t provider.T) {
	w := do(router(&crawlerStub{}, analyzerStub{}), http.MethodPost, "/api/v1/scraping/analyze")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processed_reviews":30`)

	w = do(router(&crawlerStub{}, analyzerStub{err: errors.New("quota")}), http.MethodPost, "/api/v1/scraping/analyze")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(router(&crawlerStub{}, nil), http.MethodPost, "/api/v1/scraping/analyze")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func (s *ScrapingControllerSuite) TestMetadata(t provider.T) {
	w := do(router(&crawlerStub{}, analyzerStub{}), http.MethodPost, "/api/v1/scraping/metadata")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed":2`)
}

func TestScrapingControllerSuite(t *testing.T) {
	suite.RunSuite(t, new(ScrapingControllerSuite))
}
