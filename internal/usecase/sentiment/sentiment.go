package usecase_sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/aakumar2208/tamil-movies-scraper/internal/service/pacing"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrLengthMismatch = errors.New("score count does not match batch size")
	ErrInvalidInput   = errors.New("invalid input")
)

type Completer interface {
	Complete(ctx context.Context, req model.CompletionRequest) (string, error)
}

type Repository interface {
	ListForScoring(ctx context.Context, after uuid.UUID, limit int, unscoredOnly bool) ([]model.Review, error)
	UpdateSentiments(ctx context.Context, updates []model.SentimentUpdate) error
}

type Usecase struct {
	completer  Completer
	repository Repository

	cfg         config.Sentiment
	temperature float32
	maxTokens   int32

	sleep   pacing.Sleeper
	limiter *rate.Limiter
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithSleeper replaces the backoff sleep.
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

func New(
	completer Completer,
	repository Repository,
	cfg config.Sentiment,
	llm config.LLM,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		completer:   completer,
		repository:  repository,
		cfg:         cfg,
		temperature: llm.Temperature,
		maxTokens:   llm.MaxTokens,
		sleep:       pacing.Sleep,
		limiter:     pacing.NewLimiter(cfg.BatchDelay),
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run scores every eligible review, paging through the store by ascending
// id. A failed batch is logged and skipped. Progress is persisted per batch,
// so a cancelled run keeps what it already wrote.
func (u *Usecase) Run(ctx context.Context) (model.AnalysisSummary, error) {
	start := u.now()
	var summary model.AnalysisSummary
	finish := func(err error) (model.AnalysisSummary, error) {
		summary.Elapsed = model.Elapsed(u.now().Sub(start))
		return summary, err
	}

	if u.cfg.BatchSize <= 0 || u.cfg.FetchSize <= 0 {
		return finish(fmt.Errorf("%w: batch and fetch sizes must be positive", ErrInvalidInput))
	}

	cursor := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		page, err := u.repository.ListForScoring(ctx, cursor, u.cfg.FetchSize, u.cfg.UnscoredOnly)
		if err != nil {
			return finish(fmt.Errorf("failed to fetch reviews after %s: %w", cursor, err))
		}
		if len(page) == 0 {
			break
		}
		cursor = page[len(page)-1].ID
		u.logger.Info("fetched reviews", slog.Int("count", len(page)))

		for from := 0; from < len(page); from += u.cfg.BatchSize {
			to := min(from+u.cfg.BatchSize, len(page))
			batch := page[from:to]

			if err := u.limiter.Wait(ctx); err != nil {
				return finish(err)
			}
			summary.Batches++

			n, err := u.processBatch(ctx, batch)
			if err != nil {
				if ctx.Err() != nil {
					return finish(ctx.Err())
				}
				summary.FailedBatches++
				u.logger.Error("skipping batch",
					slog.Int("batch", summary.Batches),
					slog.Int("size", len(batch)),
					slog.Any("error", err),
				)
				continue
			}
			summary.ProcessedReviews += n
			u.logger.Info("batch scored",
				slog.Int("batch", summary.Batches),
				slog.Int("scored", n),
				slog.Int("total", summary.ProcessedReviews),
			)
		}

		if len(page) < u.cfg.FetchSize {
			break
		}
	}

	u.logger.Info("analysis finished", slog.String("summary", summary.GetSummary()))
	return finish(nil)
}

func (u *Usecase) processBatch(ctx context.Context, batch []model.Review) (int, error) {
	updates, err := u.ScoreBatch(ctx, batch)
	if err != nil {
		return 0, err
	}
	if err := u.repository.UpdateSentiments(ctx, updates); err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	return len(updates), nil
}

// ScoreBatch asks the completion service for one score per review and zips
// them back by position. Failures are retried with exponential backoff up to
// the configured number of retries.
func (u *Usecase) ScoreBatch(ctx context.Context, batch []model.Review) ([]model.SentimentUpdate, error) {
	if len(batch) == 0 {
		return []model.SentimentUpdate{}, nil
	}

	bo := pacing.NewExponential(u.cfg.BaseBackoff)
	for attempt := 0; ; attempt++ {
		updates, err := u.scoreOnce(ctx, batch)
		if err == nil {
			return updates, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= u.cfg.MaxRetries {
			return nil, fmt.Errorf("%w: giving up after %d attempts: %w", model.ErrScoring, attempt+1, err)
		}

		wait := bo.NextBackOff()
		u.logger.Warn("scoring failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
		if err := u.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (u *Usecase) scoreOnce(ctx context.Context, batch []model.Review) ([]model.SentimentUpdate, error) {
	text, err := u.completer.Complete(ctx, model.CompletionRequest{
		Prompt:       BuildPrompt(batch),
		SystemPrompt: systemPrompt,
		Temperature:  u.temperature,
		MaxTokens:    u.maxTokens,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrScoring, err)
	}

	scores, err := ParseScores(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrScoring, err)
	}

	if len(scores) != len(batch) && u.cfg.LengthPolicy != config.LengthPolicyPad {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", model.ErrScoring, ErrLengthMismatch, len(scores), len(batch))
	}

	updates := make([]model.SentimentUpdate, 0, len(batch))
	for i, r := range batch {
		if i >= len(scores) {
			break
		}
		if scores[i] == nil {
			if u.cfg.LengthPolicy != config.LengthPolicyPad {
				return nil, fmt.Errorf("%w: null score at position %d", model.ErrScoring, i)
			}
			continue
		}
		updates = append(updates, model.SentimentUpdate{ReviewID: r.ID, Score: clamp(*scores[i])})
	}
	return updates, nil
}
