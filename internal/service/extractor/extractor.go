package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/aakumar2208/tamil-movies-scraper/internal/service/normalizer"
)

var (
	runtimeRe = regexp.MustCompile(`(\d+)[\s\x{00a0}]*mins`)
	yearRe    = regexp.MustCompile(`\((\d{4})\)`)
)

type Extractor struct {
	logger *slog.Logger
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract turns one page body into raw records. A page without matching
// items yields an empty slice. Items that fail to extract are logged and
// skipped without affecting their siblings.
func (e *Extractor) Extract(kind model.PageKind, body []byte) ([]model.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s page: %w", model.ErrExtraction, kind, err)
	}

	switch kind {
	case model.PageListing:
		return e.each(kind, doc.Find("li.poster-container"), listingItem), nil
	case model.PageReviews:
		return e.each(kind, doc.Find("li.film-detail"), reviewItem), nil
	case model.PageMetadata:
		return metadata(doc), nil
	default:
		return nil, fmt.Errorf("%w: unknown page kind %q", model.ErrExtraction, kind)
	}
}

type itemFunc func(s *goquery.Selection) (model.RawRecord, error)

func (e *Extractor) each(kind model.PageKind, items *goquery.Selection, fn itemFunc) []model.RawRecord {
	records := make([]model.RawRecord, 0, items.Length())
	items.Each(func(i int, s *goquery.Selection) {
		rec, err := e.safe(s, fn)
		if err != nil {
			e.logger.Warn("skipping item",
				slog.String("kind", string(kind)),
				slog.Int("index", i),
				slog.Any("error", err),
			)
			return
		}
		records = append(records, rec)
	})
	return records
}

func (e *Extractor) safe(s *goquery.Selection, fn itemFunc) (rec model.RawRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%w: %v", model.ErrExtraction, r)
		}
	}()
	return fn(s)
}

func listingItem(s *goquery.Selection) (model.RawRecord, error) {
	poster := s.Find("div.film-poster").First()
	if poster.Length() == 0 {
		return nil, fmt.Errorf("%w: no film poster", model.ErrExtraction)
	}

	rec := model.RawRecord{
		normalizer.KeyTitle: attr(poster.Find("img").First(), "alt"),
		normalizer.KeyURL:   attr(poster, "data-target-link"),
	}
	if rating, ok := s.Attr("data-average-rating"); ok {
		rec[normalizer.KeyAverageRating] = strings.TrimSpace(rating)
	}
	return rec, nil
}

func reviewItem(s *goquery.Selection) (model.RawRecord, error) {
	rec := model.RawRecord{
		normalizer.KeyAuthor:   text(s.Find("strong.name").First()),
		normalizer.KeyDate:     text(s.Find("span._nobr").First()),
		normalizer.KeyContent:  text(s.Find(".body-text").First()),
		normalizer.KeyLikes:    attr(s.Find("[data-count]").First(), "data-count"),
		normalizer.KeyComments: text(s.Find("a.comment-count").First()),
	}

	for _, class := range strings.Fields(attr(s.Find("span.rating").First(), "class")) {
		if strings.HasPrefix(class, "rated-") {
			rec[normalizer.KeyRating] = class
			break
		}
	}
	return rec, nil
}

func metadata(doc *goquery.Document) []model.RawRecord {
	footer := doc.Find(".text-footer").First()

	rec := model.RawRecord{
		normalizer.KeyOriginalTitle: text(doc.Find("h2.originalname").First()),
		normalizer.KeySynopsis:      text(doc.Find(".review.body-text.-prose.-hero p").First()),
		normalizer.KeyActors:        texts(doc.Find(".cast-list.text-sluglist a")),
		normalizer.KeyGenre:         texts(doc.Find("#tab-genres .text-sluglist a")),
		normalizer.KeyStudio:        texts(doc.Find(`#tab-details .text-sluglist a[href*="/studio/"]`)),
		normalizer.KeyIMDbURL:       attr(footer.Find(`a[data-track-action="IMDb"]`).First(), "href"),
		normalizer.KeyTMDbURL:       attr(footer.Find(`a[data-track-action="TMDb"]`).First(), "href"),
	}
	if m := runtimeRe.FindStringSubmatch(footer.Text()); m != nil {
		rec[normalizer.KeyRuntime] = m[1]
	}
	if m := yearRe.FindStringSubmatch(attr(doc.Find(`meta[property="og:title"]`).First(), "content")); m != nil {
		rec[normalizer.KeyReleaseYear] = m[1]
	}

	if empty(rec) {
		return []model.RawRecord{}
	}
	return []model.RawRecord{rec}
}

func empty(rec model.RawRecord) bool {
	for _, v := range rec {
		switch v := v.(type) {
		case string:
			if v != "" {
				return false
			}
		case []string:
			if len(v) > 0 {
				return false
			}
		}
	}
	return true
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func texts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		if t := text(item); t != "" {
			out = append(out, t)
		}
	})
	return out
}
