package http_scraping

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	http_common "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/common"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Crawler interface {
	ScrapeListing(ctx context.Context, start, total int) (model.ListingSummary, error)
	BackfillMetadata(ctx context.Context) (model.MetadataSummary, error)
	BackfillReviews(ctx context.Context, movieID *uuid.UUID) (model.ReviewSummary, error)
}

type Analyzer interface {
	Run(ctx context.Context) (model.AnalysisSummary, error)
}

type Controller struct {
	crawler  Crawler
	analyzer Analyzer

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(crawler Crawler, analyzer Analyzer, opts ...ControllerOption) *Controller {
	c := &Controller{
		crawler:  crawler,
		analyzer: analyzer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	scraping := router.Group("/scraping")
	scraping.POST("/movies", c.scrapeMovies)
	scraping.POST("/metadata", c.scrapeMetadata)
	scraping.POST("/reviews", c.scrapeReviews)
	scraping.POST("/reviews/:movie_id", c.scrapeMovieReviews)
	scraping.POST("/analyze", c.analyze)
}

// scrapeMovies crawls listing pages [start_page, start_page+total_pages).
func (c *Controller) scrapeMovies(ctx *gin.Context) {
	start, err := positiveQuery(ctx, "start_page", 1)
	if err != nil {
		http_common.BadRequest(ctx, "Invalid start_page", err)
		return
	}
	total, err := positiveQuery(ctx, "total_pages", 1)
	if err != nil {
		http_common.BadRequest(ctx, "Invalid total_pages", err)
		return
	}

	summary, err := c.crawler.ScrapeListing(ctx.Request.Context(), start, total)
	if err != nil {
		c.logger.Error("listing scrape failed", slog.Any("error", err))
		http_common.Fail(ctx, "Failed to scrape movies", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func (c *Controller) scrapeMetadata(ctx *gin.Context) {
	summary, err := c.crawler.BackfillMetadata(ctx.Request.Context())
	if err != nil {
		c.logger.Error("metadata backfill failed", slog.Any("error", err))
		http_common.Fail(ctx, "Failed to scrape metadata", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func (c *Controller) scrapeReviews(ctx *gin.Context) {
	c.reviews(ctx, nil)
}

func (c *Controller) scrapeMovieReviews(ctx *gin.Context) {
	idParam := ctx.Param("movie_id")
	movieID, err := uuid.Parse(idParam)
	if err != nil {
		c.logger.Warn("invalid movie ID", slog.String("id", idParam), slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "Invalid movie ID", nil)
		return
	}
	c.reviews(ctx, &movieID)
}

func (c *Controller) reviews(ctx *gin.Context, movieID *uuid.UUID) {
	summary, err := c.crawler.BackfillReviews(ctx.Request.Context(), movieID)
	if err != nil {
		c.logger.Error("review backfill failed", slog.Any("error", err))
		http_common.Fail(ctx, "Failed to scrape reviews", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// analyze answers 500 when no completion service is configured.
func (c *Controller) analyze(ctx *gin.Context) {
	if c.analyzer == nil {
		http_common.Fail(ctx, "Sentiment analysis is not configured", errors.New("no completion service"))
		return
	}
	summary, err := c.analyzer.Run(ctx.Request.Context())
	if err != nil {
		c.logger.Error("sentiment analysis failed", slog.Any("error", err))
		http_common.Fail(ctx, "Failed to analyze sentiments", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func positiveQuery(ctx *gin.Context, key string, def int) (int, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, errors.New(key + " must be at least 1")
	}
	return v, nil
}
