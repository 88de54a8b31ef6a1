package http_review

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	http_common "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/common"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewResponseDTO struct {
	ID             uuid.UUID `json:"id"`
	MovieID        uuid.UUID `json:"movie_id"`
	Author         *string   `json:"author"`
	Content        string    `json:"content"`
	Rating         *float64  `json:"rating" example:"4.5"`
	Date           string    `json:"date" example:"2023-03-15"`
	Likes          int       `json:"likes"`
	Comments       int       `json:"comments"`
	LetterboxdURL  string    `json:"letterboxd_url"`
	SentimentScore *float64  `json:"sentiment_score" example:"0.37"`
}

type ReviewsListResponseDTO struct {
	Reviews []ReviewResponseDTO `json:"reviews"`
	Total   int                 `json:"total"`
}

func ConvertFromReview(r model.Review) ReviewResponseDTO {
	return ReviewResponseDTO{
		ID:             r.ID,
		MovieID:        r.MovieID,
		Author:         r.Author,
		Content:        r.Content,
		Rating:         r.Rating,
		Date:           r.Date.Format(time.DateOnly),
		Likes:          r.Likes,
		Comments:       r.Comments,
		LetterboxdURL:  r.LetterboxdURL,
		SentimentScore: r.SentimentScore,
	}
}

type Repository interface {
	Load(ctx context.Context, movieID *uuid.UUID) ([]*model.Review, error)
}

type Controller struct {
	repository Repository

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(repository Repository, opts ...ControllerOption) *Controller {
	c := &Controller{
		repository: repository,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reviews", c.getReviews)
}

// getReviews lists every review, or one movie's when movie_id is given.
func (c *Controller) getReviews(ctx *gin.Context) {
	var movieID *uuid.UUID
	if raw, ok := ctx.GetQuery("movie_id"); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.logger.Warn("invalid movie ID", slog.String("id", raw), slog.String("error", err.Error()))
			http_common.BadRequest(ctx, "Invalid movie ID", nil)
			return
		}
		movieID = &id
	}

	reviews, err := c.repository.Load(ctx.Request.Context(), movieID)
	if err != nil {
		c.logger.Error("failed to load reviews", slog.String("error", err.Error()))
		http_common.Fail(ctx, "Failed to load reviews", err)
		return
	}

	out := make([]ReviewResponseDTO, len(reviews))
	for i, r := range reviews {
		out[i] = ConvertFromReview(*r)
	}
	ctx.JSON(http.StatusOK, ReviewsListResponseDTO{Reviews: out, Total: len(out)})
}
