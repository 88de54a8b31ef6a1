package usecase_crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

const listingTarget = "listing"

// ScrapeListing crawls listing pages [start, start+total). A page that fails
// is counted and skipped.
func (u *Usecase) ScrapeListing(ctx context.Context, start, total int) (model.ListingSummary, error) {
	var summary model.ListingSummary
	if start < 1 || total < 1 {
		return summary, fmt.Errorf("%w: start page and total pages must be positive", ErrInvalidInput)
	}

	begin := u.now()
	for page := start; page < start+total; page++ {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = u.elapsed(begin)
			return summary, err
		}

		summary.Pages++
		stored, err := u.listingPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = u.elapsed(begin)
				return summary, ctx.Err()
			}
			u.enter(listingTarget, page, StateFailed)
			summary.PagesFailed++
			u.logger.Error("listing page failed", slog.Int("page", page), slog.Any("error", err))
			continue
		}
		summary.MoviesStored += stored
		u.enter(listingTarget, page, StateAdvancing)
	}
	u.enter(listingTarget, start+total-1, StateDone)

	summary.Elapsed = u.elapsed(begin)
	u.logger.Info("listing crawl finished", slog.String("summary", summary.GetSummary()))
	return summary, nil
}

func (u *Usecase) listingPage(ctx context.Context, page int) (int, error) {
	url := u.ListingURL(page)

	u.enter(listingTarget, page, StateFetching)
	body, err := u.fetch(ctx, model.PageListing, url)
	if err != nil {
		return 0, err
	}

	u.enter(listingTarget, page, StateExtracting)
	records, err := u.extractor.Extract(model.PageListing, body)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		u.logger.Warn("listing page has no films", slog.Int("page", page))
		return 0, nil
	}

	movies := make([]model.Movie, 0, len(records))
	for i, rec := range records {
		m, err := u.normalizer.Movie(rec)
		if err != nil {
			u.logger.Warn("skipping listing item", slog.Int("page", page), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		if !m.HasSource() {
			u.logger.Warn("skipping listing item without url", slog.Int("page", page), slog.String("title", m.Title))
			continue
		}
		movies = append(movies, m)
	}

	u.enter(listingTarget, page, StateStoring)
	n, err := u.movies.UpsertMovies(ctx, movies)
	if err != nil {
		return 0, err
	}
	u.logger.Info("listing page stored", slog.Int("page", page), slog.Int("movies", n))
	return n, nil
}
