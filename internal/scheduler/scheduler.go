package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type Crawler interface {
	ScrapeListing(ctx context.Context, start, total int) (model.ListingSummary, error)
	BackfillMetadata(ctx context.Context) (model.MetadataSummary, error)
	BackfillReviews(ctx context.Context, movieID *uuid.UUID) (model.ReviewSummary, error)
}

type Analyzer interface {
	Run(ctx context.Context) (model.AnalysisSummary, error)
}

// Report collects the summaries of one pipeline run.
type Report struct {
	Listing  model.ListingSummary   `json:"listing"`
	Metadata model.MetadataSummary  `json:"metadata"`
	Reviews  model.ReviewSummary    `json:"reviews"`
	Analysis *model.AnalysisSummary `json:"analysis,omitempty"`
	Elapsed  model.Elapsed          `json:"elapsed"`
}

func (r Report) GetSummary() string {
	s := fmt.Sprintf("%s; %s; %s", r.Listing.GetSummary(), r.Metadata.GetSummary(), r.Reviews.GetSummary())
	if r.Analysis != nil {
		s += "; " + r.Analysis.GetSummary()
	}
	return s
}

type Scheduler struct {
	crawler      Crawler
	analyzer     Analyzer
	listingPages int

	cron   *cron.Cron
	logger *slog.Logger
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithAnalyzer adds sentiment scoring as the last stage of every run.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Scheduler) {
		s.analyzer = a
	}
}

func New(crawler Crawler, listingPages int, opts ...Option) *Scheduler {
	s := &Scheduler{
		crawler:      crawler,
		listingPages: listingPages,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
		cron.WithLogger(cronLogger{s.logger}),
	)
	return s
}

// Start runs the pipeline on spec until ctx is done. A tick that fires while
// the previous run is still going is skipped.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled run failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.logger.Info("scheduler started", slog.String("schedule", spec))
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce runs listing, metadata, reviews and, when configured, analysis in
// that order. A stage error stops the run; per-item failures are in the
// stage summaries.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report
	done := func(err error) (Report, error) {
		report.Elapsed = model.Elapsed(time.Since(start))
		return report, err
	}

	s.logger.Info("pipeline run started")

	var err error
	if report.Listing, err = s.crawler.ScrapeListing(ctx, 1, s.listingPages); err != nil {
		return done(fmt.Errorf("listing: %w", err))
	}
	if report.Metadata, err = s.crawler.BackfillMetadata(ctx); err != nil {
		return done(fmt.Errorf("metadata: %w", err))
	}
	if report.Reviews, err = s.crawler.BackfillReviews(ctx, nil); err != nil {
		return done(fmt.Errorf("reviews: %w", err))
	}
	if s.analyzer != nil {
		analysis, err := s.analyzer.Run(ctx)
		if err != nil {
			return done(fmt.Errorf("analysis: %w", err))
		}
		report.Analysis = &analysis
	}

	s.logger.Info("pipeline run finished", slog.String("summary", report.GetSummary()))
	return done(nil)
}

type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if err == nil {
		err = errors.New("unknown")
	}
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
