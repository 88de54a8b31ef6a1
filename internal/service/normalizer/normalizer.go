package normalizer

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
)

// Raw record keys shared with the extractor.
const (
	KeyTitle         = "title"
	KeyURL           = "url"
	KeyAverageRating = "average_rating"

	KeyOriginalTitle = "original_title"
	KeySynopsis      = "synopsis"
	KeyRuntime       = "runtime"
	KeyActors        = "actors"
	KeyGenre         = "genre"
	KeyStudio        = "studio"
	KeyReleaseYear   = "release_year"
	KeyIMDbURL       = "imdb_url"
	KeyTMDbURL       = "tmdb_url"

	KeyAuthor   = "author"
	KeyDate     = "date"
	KeyRating   = "rating"
	KeyContent  = "content"
	KeyLikes    = "likes"
	KeyComments = "comments"
)

var (
	ratingRe   = regexp.MustCompile(`^rated-(\d+)$`)
	relativeRe = regexp.MustCompile(`^(\d+)\s+(minute|hour|day|week)s?\s+ago$`)
	yearRe     = regexp.MustCompile(`^\d{4}$`)
	imdbRe     = regexp.MustCompile(`tt\d+`)
	tmdbRe     = regexp.MustCompile(`movie/(\d+)`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

type Normalizer struct {
	baseURL *url.URL
	now     func() time.Time
}

type Option func(*Normalizer)

// WithClock replaces time.Now as the reference for relative dates.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

func New(baseURL string, opts ...Option) (*Normalizer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	n := &Normalizer{
		baseURL: u,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *Normalizer) today() time.Time {
	now := n.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// ParseRating converts a `rated-N` code (N in 0..10) to the 0-5 scale.
func ParseRating(raw string) *float64 {
	m := ratingRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v > 10 {
		return nil
	}
	r := float64(v) / 2.0
	return &r
}

// ParseCount never fails: anything that is not a non-negative integer is 0.
func ParseCount(raw string) int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseDate falls back to today for anything it does not recognise, so the
// result is not a reliable recency signal for unusual inputs.
func (n *Normalizer) ParseDate(raw string) time.Time {
	today := n.today()
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))

	switch s {
	case "", "today", "just now":
		return today
	case "yesterday":
		return today.AddDate(0, 0, -1)
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		k, err := strconv.Atoi(m[1])
		if err != nil {
			return today
		}
		switch m[2] {
		case "day":
			return today.AddDate(0, 0, -k)
		case "week":
			return today.AddDate(0, 0, -7*k)
		default:
			return today
		}
	}

	trimmed := strings.Join(strings.Fields(raw), " ")
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, today.Location()); err == nil {
			return t
		}
	}
	return today
}

// ReleaseDate accepts a four digit year and pins it to January 1st.
func ReleaseDate(year string) *time.Time {
	year = strings.TrimSpace(year)
	if !yearRe.MatchString(year) {
		return nil
	}
	y, _ := strconv.Atoi(year)
	t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func IMDbID(link string) *string {
	m := imdbRe.FindString(link)
	if m == "" {
		return nil
	}
	return &m
}

func TMDbID(link string) *string {
	m := tmdbRe.FindStringSubmatch(link)
	if m == nil {
		return nil
	}
	return &m[1]
}

// AbsoluteURL resolves a site-relative link against the base URL.
func (n *Normalizer) AbsoluteURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return n.baseURL.ResolveReference(ref).String()
}

func (n *Normalizer) Movie(rec model.RawRecord) (model.Movie, error) {
	title := rec.String(KeyTitle)
	if title == model.EmptyTitle {
		return model.Movie{}, fmt.Errorf("%w: movie without title", model.ErrValidation)
	}

	link := n.AbsoluteURL(rec.String(KeyURL))
	id := model.NaturalKey(link)
	if link == "" {
		id = model.NaturalKey("title", title)
	}

	return model.Movie{
		ID:            id,
		Title:         title,
		Genre:         []string{},
		AverageRating: parseFloat(rec.String(KeyAverageRating)),
		LetterboxdURL: link,
		Actors:        []string{},
		Studio:        []string{},
	}, nil
}

func (n *Normalizer) Metadata(rec model.RawRecord) model.MetadataPatch {
	imdbURL := optional(rec.String(KeyIMDbURL))
	tmdbURL := optional(rec.String(KeyTMDbURL))

	patch := model.MetadataPatch{
		OriginalTitle: optional(rec.String(KeyOriginalTitle)),
		Synopsis:      optional(rec.String(KeySynopsis)),
		Actors:        rec.Strings(KeyActors),
		Genre:         rec.Strings(KeyGenre),
		Studio:        rec.Strings(KeyStudio),
		ReleaseDate:   ReleaseDate(rec.String(KeyReleaseYear)),
		IMDbURL:       imdbURL,
		TMDbURL:       tmdbURL,
	}
	if imdbURL != nil {
		patch.IMDbID = IMDbID(*imdbURL)
	}
	if tmdbURL != nil {
		patch.TMDbID = TMDbID(*tmdbURL)
	}
	if rt, err := strconv.Atoi(rec.String(KeyRuntime)); err == nil && rt > 0 {
		patch.Runtime = &rt
	}
	return patch
}

// Review builds a review of movieID found on pageURL. Content may be empty.
func (n *Normalizer) Review(rec model.RawRecord, movieID uuid.UUID, pageURL string) (model.Review, error) {
	if movieID == uuid.Nil {
		return model.Review{}, fmt.Errorf("%w: review without movie", model.ErrValidation)
	}

	r := model.Review{
		MovieID:       movieID,
		Author:        optional(rec.String(KeyAuthor)),
		Content:       rec.String(KeyContent),
		Rating:        ParseRating(rec.String(KeyRating)),
		Date:          n.ParseDate(rec.String(KeyDate)),
		Likes:         ParseCount(rec.String(KeyLikes)),
		Comments:      ParseCount(rec.String(KeyComments)),
		LetterboxdURL: pageURL,
	}
	r.ID = r.NaturalKey()
	return r, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
