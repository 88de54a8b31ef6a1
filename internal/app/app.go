package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	http_init "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/init"
	http_access_middleware "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/middleware/access"
	http_movie "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/movie"
	http_review "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/review"
	http_scraping "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/scraping"
	ws_progress "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/ws/progress"
	infra_completion "github.com/aakumar2208/tamil-movies-scraper/internal/infra/completion"
	infra_fetcher "github.com/aakumar2208/tamil-movies-scraper/internal/infra/fetcher"
	infra_memstore "github.com/aakumar2208/tamil-movies-scraper/internal/infra/memstore"
	infra_pg_init "github.com/aakumar2208/tamil-movies-scraper/internal/infra/postgres/init"
	infra_postgres_movie "github.com/aakumar2208/tamil-movies-scraper/internal/infra/postgres/movie"
	infra_postgres_review "github.com/aakumar2208/tamil-movies-scraper/internal/infra/postgres/review"
	infra_redis_init "github.com/aakumar2208/tamil-movies-scraper/internal/infra/redis/init"
	infra_redis_lock "github.com/aakumar2208/tamil-movies-scraper/internal/infra/redis/lock"
	infra_s3 "github.com/aakumar2208/tamil-movies-scraper/internal/infra/s3"
	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/aakumar2208/tamil-movies-scraper/internal/scheduler"
	"github.com/aakumar2208/tamil-movies-scraper/internal/service/extractor"
	"github.com/aakumar2208/tamil-movies-scraper/internal/service/normalizer"
	usecase_crawl "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/crawl"
	usecase_ranking "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/ranking"
	usecase_sentiment "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/sentiment"
	"github.com/google/uuid"
)

var ErrNoCompletion = errors.New("sentiment analysis needs GEMINI_API_KEY")

type movieStore interface {
	UpsertMovies(ctx context.Context, movies []model.Movie) (int, error)
	Load(ctx context.Context) ([]*model.Movie, error)
	LoadByID(ctx context.Context, ID uuid.UUID) (model.Movie, error)
	UpdateMetadata(ctx context.Context, ID uuid.UUID, patch model.MetadataPatch) error
}

type reviewStore interface {
	UpsertReviews(ctx context.Context, reviews []model.Review) (int, error)
	Load(ctx context.Context, movieID *uuid.UUID) ([]*model.Review, error)
	ListForScoring(ctx context.Context, after uuid.UUID, limit int, unscoredOnly bool) ([]model.Review, error)
	UpdateSentiments(ctx context.Context, updates []model.SentimentUpdate) error
}

type archive interface {
	Save(ctx context.Context, obj model.FileObject) (string, error)
}

type App struct {
	cfg    *config.Config
	logger *slog.Logger

	movies  movieStore
	reviews reviewStore
	pages   archive

	Crawl     *usecase_crawl.Usecase
	Sentiment *usecase_sentiment.Usecase
	Ranking   *usecase_ranking.Usecase
	Progress  *ws_progress.Hub

	closers []func() error
}

// Build wires every component from cfg. Postgres, Redis, S3 and Gemini are
// optional: without DB_HOST the store lives in memory, without REDIS_HOST the
// crawl runs unlocked, without GEMINI_API_KEY sentiment analysis is off.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	if cfg.Postgres.Enabled() {
		db := infra_pg_init.MustEstablishConn(cfg.Postgres)
		a.closers = append(a.closers, db.Close)
		if err := infra_pg_init.Migrate(ctx, db); err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.movies = infra_postgres_movie.New(db)
		a.reviews = infra_postgres_review.New(db)
	} else {
		log.Warn("DB_HOST is empty, using in-memory store")
		store := infra_memstore.New()
		a.movies = store.Movies()
		a.reviews = store.Reviews()
	}

	norm, err := normalizer.New(cfg.Scraper.BaseURL)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.Progress = ws_progress.NewHub(ws_progress.WithLogger(logger.Component("progress")))
	crawlOpts := []usecase_crawl.Option{
		usecase_crawl.WithLogger(logger.Component("crawl")),
		usecase_crawl.WithObserver(a.Progress.Observe),
	}
	if cfg.Redis.Enabled() {
		rdb := infra_redis_init.MustEstablishConn(cfg.Redis)
		a.closers = append(a.closers, rdb.Close)
		crawlOpts = append(crawlOpts, usecase_crawl.WithLocker(infra_redis_lock.New(rdb, "crawl:", cfg.Redis.LockTTL)))
	}
	if cfg.Scraper.ArchivePages {
		if !cfg.S3.Enabled() {
			log.Warn("SCRAPER_ARCHIVE_PAGES is set but S3_BUCKET is empty, pages are not archived")
		} else {
			store, err := newArchive(cfg.S3)
			if err != nil {
				return nil, errors.Join(err, a.Close())
			}
			a.pages = store
			crawlOpts = append(crawlOpts, usecase_crawl.WithArchive(store))
		}
	}

	a.Crawl = usecase_crawl.New(
		infra_fetcher.New(cfg.Scraper.UserAgent, cfg.Scraper.Timeout, cfg.Scraper.DefaultRetryAfter,
			infra_fetcher.WithLogger(logger.Component("fetcher")),
		),
		extractor.New(extractor.WithLogger(logger.Component("extractor"))),
		norm,
		a.movies,
		a.reviews,
		cfg.Scraper,
		crawlOpts...,
	)

	if cfg.LLM.APIKey != "" {
		gemini, err := infra_completion.New(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.Sentiment = usecase_sentiment.New(gemini, a.reviews, cfg.Sentiment, cfg.LLM,
			usecase_sentiment.WithLogger(logger.Component("sentiment")),
		)
	} else {
		log.Warn("GEMINI_API_KEY is empty, sentiment analysis disabled")
	}

	a.Ranking = usecase_ranking.New(a.movies, a.reviews, usecase_ranking.WithLogger(logger.Component("ranking")))
	return a, nil
}

func newArchive(cfg config.S3Archive) (archive, error) {
	client := infra_s3.MustEstablishConn(cfg, os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"))
	store, err := infra_s3.New(cfg.Bucket, client, cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("page archive: %w", err)
	}
	return store, nil
}

// Analyzer returns the sentiment stage or ErrNoCompletion when it is off.
func (a *App) Analyzer() (*usecase_sentiment.Usecase, error) {
	if a.Sentiment == nil {
		return nil, ErrNoCompletion
	}
	return a.Sentiment, nil
}

func (a *App) analyzer() http_scraping.Analyzer {
	if a.Sentiment == nil {
		return nil
	}
	return a.Sentiment
}

func (a *App) Router() *http_init.ControllerPool {
	pool := http_init.NewControllerPool(logger.Component("http"), http_access_middleware.ExclusiveWrites())
	pool.Add(http_scraping.New(a.Crawl, a.analyzer(), http_scraping.WithLogger(logger.Component("http"))))
	pool.Add(http_movie.New(a.movies, a.Ranking, http_movie.WithLogger(logger.Component("http"))))
	pool.Add(http_review.New(a.reviews, http_review.WithLogger(logger.Component("http"))))
	pool.Add(ws_progress.New(a.Progress, ws_progress.WithControllerLogger(logger.Component("http"))))
	pool.Register()
	return pool
}

// Serve runs the HTTP API until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	return a.Router().Run(ctx, net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port))
}

func (a *App) Scheduler() *scheduler.Scheduler {
	opts := []scheduler.Option{scheduler.WithLogger(logger.Component("scheduler"))}
	if a.Sentiment != nil {
		opts = append(opts, scheduler.WithAnalyzer(a.Sentiment))
	}
	return scheduler.New(a.Crawl, a.cfg.Scraper.ListingPages, opts...)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
