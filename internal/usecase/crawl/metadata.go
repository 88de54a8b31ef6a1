package usecase_crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

// BackfillMetadata enriches every stored movie from its detail page. A
// failing movie is logged and counted, the rest carry on.
func (u *Usecase) BackfillMetadata(ctx context.Context) (model.MetadataSummary, error) {
	var summary model.MetadataSummary
	begin := u.now()

	movies, err := u.movies.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: load movies: %w", model.ErrPersistence, err)
	}
	summary.Total = len(movies)

	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = u.elapsed(begin)
			return summary, err
		}
		if !m.HasSource() {
			summary.Skipped++
			u.logger.Warn("movie has no url, skipping metadata", slog.String("movie_id", m.ID.String()))
			continue
		}

		if err := u.CrawlMovieMetadata(ctx, *m); err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = u.elapsed(begin)
				return summary, ctx.Err()
			}
			summary.Failed++
			u.logger.Error("metadata crawl failed",
				slog.String("movie_id", m.ID.String()),
				slog.String("title", m.Title),
				slog.Any("error", err),
			)
			continue
		}
		summary.Completed++
	}

	summary.Elapsed = u.elapsed(begin)
	u.logger.Info("metadata backfill finished", slog.String("summary", summary.GetSummary()))
	return summary, nil
}

// CrawlMovieMetadata fetches the movie's detail page and overwrites its
// enrichment fields.
func (u *Usecase) CrawlMovieMetadata(ctx context.Context, m model.Movie) error {
	if !m.HasSource() {
		return fmt.Errorf("%w: movie %s has no url", ErrInvalidInput, m.ID)
	}
	target := "metadata:" + m.ID.String()

	u.enter(target, 1, StateFetching)
	body, err := u.fetch(ctx, model.PageMetadata, m.LetterboxdURL)
	if err != nil {
		u.enter(target, 1, StateFailed)
		return err
	}

	u.enter(target, 1, StateExtracting)
	records, err := u.extractor.Extract(model.PageMetadata, body)
	if err != nil {
		u.enter(target, 1, StateFailed)
		return err
	}
	if len(records) == 0 {
		u.enter(target, 1, StateFailed)
		return fmt.Errorf("%w: no metadata on %s", model.ErrExtraction, m.LetterboxdURL)
	}

	u.enter(target, 1, StateStoring)
	if err := u.movies.UpdateMetadata(ctx, m.ID, u.normalizer.Metadata(records[0])); err != nil {
		u.enter(target, 1, StateFailed)
		return err
	}
	u.enter(target, 1, StateDone)
	return nil
}
