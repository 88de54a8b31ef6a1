package http_movie

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

type MovieResponseDTO struct {
	ID            uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title         string    `json:"title" example:"Vikram"`
	Genre         []string  `json:"genre" example:"Action,Thriller"`
	ReleaseDate   *string   `json:"release_date" example:"2022-01-01"`
	AverageRating *float64  `json:"average_rating" example:"3.92"`
	LetterboxdURL string    `json:"letterboxd_url" example:"https://letterboxd.com/film/vikram-2022/"`
	OriginalTitle *string   `json:"original_title"`
	Synopsis      *string   `json:"synopsis"`
	Runtime       *int      `json:"runtime" example:"174"`
	Actors        []string  `json:"actors"`
	Studio        []string  `json:"studio"`
	TMDbID        *string   `json:"tmdb_id" example:"664280"`
	IMDbID        *string   `json:"imdb_id" example:"tt9179430"`
	TMDbURL       *string   `json:"tmdb_url"`
	IMDbURL       *string   `json:"imdb_url"`
}

type MoviesListResponseDTO struct {
	Movies []MovieResponseDTO `json:"movies"`
	Total  int                `json:"total"`
}

func ConvertFromMovie(m model.Movie) MovieResponseDTO {
	dto := MovieResponseDTO{
		ID:            m.ID,
		Title:         m.Title,
		Genre:         nonNil(m.Genre),
		AverageRating: m.AverageRating,
		LetterboxdURL: m.LetterboxdURL,
		OriginalTitle: m.OriginalTitle,
		Synopsis:      m.Synopsis,
		Runtime:       m.Runtime,
		Actors:        nonNil(m.Actors),
		Studio:        nonNil(m.Studio),
		TMDbID:        m.TMDbID,
		IMDbID:        m.IMDbID,
		TMDbURL:       m.TMDbURL,
		IMDbURL:       m.IMDbURL,
	}
	if m.ReleaseDate != nil {
		d := m.ReleaseDate.Format(time.DateOnly)
		dto.ReleaseDate = &d
	}
	return dto
}

func ConvertFromMovieList(movies []*model.Movie) []MovieResponseDTO {
	out := make([]MovieResponseDTO, len(movies))
	for i, m := range movies {
		out[i] = ConvertFromMovie(*m)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type Repository interface {
	Load(ctx context.Context) ([]*model.Movie, error)
	LoadByID(ctx context.Context, ID uuid.UUID) (model.Movie, error)
}

type Ranker interface {
	Rankings(ctx context.Context) ([]model.RankingEntry, error)
}

type Controller struct {
	repository Repository
	ranker     Ranker

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(repository Repository, ranker Ranker, opts ...ControllerOption) *Controller {
	c := &Controller{
		repository: repository,
		ranker:     ranker,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	movies.GET("", c.getMovies)
	movies.GET("/rankings", c.getRankings)
	movies.GET("/:movie_id", c.getMovie)
}

func (c *Controller) getMovies(ctx *gin.Context) {
	movies, err := c.repository.Load(ctx.Request.Context())
	if err != nil {
		c.logger.Error("failed to load movies", slog.String("error", err.Error()))
		http_common.Fail(ctx, "Failed to load movies", err)
		return
	}

	ctx.JSON(http.StatusOK, MoviesListResponseDTO{
		Movies: ConvertFromMovieList(movies),
		Total:  len(movies),
	})
}

// getMovie answers 404 for an unknown id.
func (c *Controller) getMovie(ctx *gin.Context) {
	idParam := ctx.Param("movie_id")
	movieID, err := uuid.Parse(idParam)
	if err != nil {
		c.logger.Warn("invalid movie ID",
			slog.String("id", idParam),
			slog.String("error", err.Error()),
		)
		http_common.BadRequest(ctx, "Invalid movie ID", nil)
		return
	}

	m, err := c.repository.LoadByID(ctx.Request.Context(), movieID)
	if err != nil {
		c.logger.Error("failed to load movie",
			slog.String("error", err.Error()),
			slog.String("movie_id", movieID.String()),
		)
		http_common.Fail(ctx, "Failed to load movie", err)
		return
	}
	ctx.JSON(http.StatusOK, ConvertFromMovie(m))
}

// getRankings returns movies best first.
func (c *Controller) getRankings(ctx *gin.Context) {
	entries, err := c.ranker.Rankings(ctx.Request.Context())
	if err != nil {
		c.logger.Error("failed to rank movies", slog.String("error", err.Error()))
		http_common.Fail(ctx, "Failed to rank movies", err)
		return
	}
	ctx.JSON(http.StatusOK, entries)
}
