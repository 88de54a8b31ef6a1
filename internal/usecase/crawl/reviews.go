package usecase_crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
)

// BackfillReviews crawls the reviews of one movie, or of every stored movie
// when movieID is nil.
func (u *Usecase) BackfillReviews(ctx context.Context, movieID *uuid.UUID) (model.ReviewSummary, error) {
	var summary model.ReviewSummary
	begin := u.now()

	var movies []*model.Movie
	if movieID != nil {
		m, err := u.movies.LoadByID(ctx, *movieID)
		if err != nil {
			return summary, err
		}
		movies = []*model.Movie{&m}
	} else {
		all, err := u.movies.Load(ctx)
		if err != nil {
			return summary, fmt.Errorf("%w: load movies: %w", model.ErrPersistence, err)
		}
		movies = all
	}

	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = u.elapsed(begin)
			return summary, err
		}
		if !m.HasSource() {
			u.logger.Warn("movie has no url, skipping reviews", slog.String("movie_id", m.ID.String()))
			continue
		}

		summary.TotalMovies++
		reviews, err := u.CrawlMovieReviews(ctx, *m)
		summary.TotalReviews += len(reviews)
		if err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = u.elapsed(begin)
				return summary, ctx.Err()
			}
			summary.FailedMovies++
			u.logger.Error("review crawl failed",
				slog.String("movie_id", m.ID.String()),
				slog.String("title", m.Title),
				slog.Int("stored", len(reviews)),
				slog.Any("error", err),
			)
			continue
		}
		u.logger.Info("reviews stored", slog.String("title", m.Title), slog.Int("count", len(reviews)))
	}

	summary.Elapsed = u.elapsed(begin)
	u.logger.Info("review backfill finished", slog.String("summary", summary.GetSummary()))
	return summary, nil
}

// CrawlMovieReviews walks the movie's review pages from 1 until a page
// yields no reviews, storing each page as it goes. On failure the reviews
// stored so far are returned together with the error.
func (u *Usecase) CrawlMovieReviews(ctx context.Context, m model.Movie) ([]model.Review, error) {
	if !m.HasSource() {
		return nil, fmt.Errorf("%w: movie %s has no url", ErrInvalidInput, m.ID)
	}
	target := "reviews:" + m.ID.String()

	release, err := u.locker.Lock(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			u.logger.Warn("failed to release crawl lock", slog.String("target", target), slog.Any("error", err))
		}
	}()

	collected := make([]model.Review, 0)
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		stored, more, err := u.reviewPage(ctx, m, target, page)
		if err != nil {
			u.enter(target, page, StateFailed)
			return collected, err
		}
		if !more {
			u.enter(target, page, StateDone)
			return collected, nil
		}
		collected = append(collected, stored...)
		u.enter(target, page, StateAdvancing)
	}
}

// reviewPage reports more=false when the page carries no review items.
func (u *Usecase) reviewPage(ctx context.Context, m model.Movie, target string, page int) ([]model.Review, bool, error) {
	url := ReviewPageURL(m.LetterboxdURL, page)

	u.enter(target, page, StateFetching)
	body, err := u.fetch(ctx, model.PageReviews, url)
	if err != nil {
		return nil, false, err
	}

	u.enter(target, page, StateExtracting)
	records, err := u.extractor.Extract(model.PageReviews, body)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	reviews := make([]model.Review, 0, len(records))
	for i, rec := range records {
		r, err := u.normalizer.Review(rec, m.ID, url)
		if err != nil {
			u.logger.Warn("skipping review", slog.String("url", url), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		reviews = append(reviews, r)
	}

	u.enter(target, page, StateStoring)
	if _, err := u.reviews.UpsertReviews(ctx, reviews); err != nil {
		return nil, false, err
	}
	u.logger.Debug("review page stored", slog.String("url", url), slog.Int("count", len(reviews)))
	return reviews, true, nil
}
