package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RawRecord is one loosely typed field mapping produced by the extractor.
type RawRecord map[string]any

// String returns the value under key as a trimmed string, or "" when it is
// absent or not a string.
func (r RawRecord) String(key string) string {
	v, ok := r[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Strings returns the value under key as a string slice, never nil.
func (r RawRecord) Strings(key string) []string {
	v, ok := r[key].([]string)
	if !ok || v == nil {
		return []string{}
	}
	return v
}

type PageKind string

const (
	PageListing  PageKind = "listing"
	PageMetadata PageKind = "movie-metadata"
	PageReviews  PageKind = "review-thread"
)

var naturalKeyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tamil-movies-scraper"))

// NaturalKey derives a stable identifier from the given parts. Each part is
// length-prefixed so no two distinct part lists share a key.
func NaturalKey(parts ...string) uuid.UUID {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return uuid.NewSHA1(naturalKeyNamespace, []byte(b.String()))
}

// CompletionRequest is one call to a text-completion service.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int32
	JSON         bool
}
