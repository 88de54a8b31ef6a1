package usecase_crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	infra_fetcher "github.com/aakumar2208/tamil-movies-scraper/internal/infra/fetcher"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/aakumar2208/tamil-movies-scraper/internal/service/pacing"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) infra_fetcher.Page
}

type Extractor interface {
	Extract(kind model.PageKind, body []byte) ([]model.RawRecord, error)
}

type Normalizer interface {
	Movie(rec model.RawRecord) (model.Movie, error)
	Metadata(rec model.RawRecord) model.MetadataPatch
	Review(rec model.RawRecord, movieID uuid.UUID, pageURL string) (model.Review, error)
}

type MovieRepository interface {
	UpsertMovies(ctx context.Context, movies []model.Movie) (int, error)
	Load(ctx context.Context) ([]*model.Movie, error)
	LoadByID(ctx context.Context, ID uuid.UUID) (model.Movie, error)
	UpdateMetadata(ctx context.Context, ID uuid.UUID, patch model.MetadataPatch) error
}

type ReviewRepository interface {
	UpsertReviews(ctx context.Context, reviews []model.Review) (int, error)
}

// Locker guards a movie's review crawl against a second worker.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

type Archive interface {
	Save(ctx context.Context, obj model.FileObject) (string, error)
}

type Usecase struct {
	fetcher    Fetcher
	extractor  Extractor
	normalizer Normalizer
	movies     MovieRepository
	reviews    ReviewRepository

	cfg     config.Scraper
	locker  Locker
	archive Archive
	limiter *rate.Limiter
	sleep   pacing.Sleeper
	now     func() time.Time
	observe func(target string, page int, s State)
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithLocker(l Locker) Option {
	return func(u *Usecase) {
		u.locker = l
	}
}

// WithArchive keeps a copy of every fetched page body.
func WithArchive(a Archive) Option {
	return func(u *Usecase) {
		u.archive = a
	}
}

func WithSleeper(s pacing.Sleeper) Option {
	return func(u *Usecase) {
		u.sleep = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

// WithObserver is called on every state transition of a crawl target.
func WithObserver(fn func(target string, page int, s State)) Option {
	return func(u *Usecase) {
		u.observe = fn
	}
}

func New(
	fetcher Fetcher,
	extractor Extractor,
	normalizer Normalizer,
	movies MovieRepository,
	reviews ReviewRepository,
	cfg config.Scraper,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		fetcher:    fetcher,
		extractor:  extractor,
		normalizer: normalizer,
		movies:     movies,
		reviews:    reviews,
		cfg:        cfg,
		locker:     noLock{},
		limiter:    pacing.NewLimiter(cfg.RequestDelay),
		sleep:      pacing.Sleep,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type noLock struct{}

func (noLock) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

func (u *Usecase) ListingURL(page int) string {
	return strings.TrimSuffix(u.cfg.BaseURL, "/") + fmt.Sprintf(u.cfg.ListingPath, page)
}

// ReviewPageURL is the n-th page of a movie's reviews ordered by activity.
func ReviewPageURL(movieURL string, n int) string {
	return fmt.Sprintf("%s/reviews/by/activity/page/%d/", strings.TrimSuffix(movieURL, "/"), n)
}

// fetch applies the politeness delay and retries rate-limited responses
// after the advertised retry-after, up to the configured number of attempts.
func (u *Usecase) fetch(ctx context.Context, kind model.PageKind, url string) ([]byte, error) {
	attempts := max(u.cfg.RateLimitAttempts, 1)
	for attempt := 1; ; attempt++ {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page := u.fetcher.Fetch(ctx, url)
		switch page.Status {
		case infra_fetcher.StatusOK:
			u.keep(ctx, kind, url, page.Body)
			return page.Body, nil
		case infra_fetcher.StatusRateLimited:
			if attempt >= attempts {
				return nil, &model.FetchError{URL: url, StatusCode: http.StatusTooManyRequests, Err: ErrRateLimited}
			}
			u.logger.Warn("rate limited, waiting",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("retry_after", page.RetryAfter),
			)
			if err := u.sleep(ctx, page.RetryAfter); err != nil {
				return nil, err
			}
		default:
			if page.Err == nil {
				return nil, &model.FetchError{URL: url, Err: errors.New("fetch failed")}
			}
			return nil, page.Err
		}
	}
}

func (u *Usecase) keep(ctx context.Context, kind model.PageKind, url string, body []byte) {
	if u.archive == nil {
		return
	}
	key, err := u.archive.Save(ctx, model.PageSnapshot{URL: url, Kind: kind, Content: body})
	if err != nil {
		u.logger.Warn("failed to archive page", slog.String("url", url), slog.Any("error", err))
		return
	}
	u.logger.Debug("page archived", slog.String("key", key))
}

func (u *Usecase) elapsed(start time.Time) model.Elapsed {
	return model.Elapsed(u.now().Sub(start))
}
