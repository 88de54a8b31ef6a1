package model

import (
	"fmt"
	"strconv"
	"time"
)

// Elapsed is a run duration serialized as fractional seconds.
type Elapsed time.Duration

func (e Elapsed) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(time.Duration(e).Seconds(), 'f', 3, 64)), nil
}

func (e Elapsed) String() string {
	return time.Duration(e).Round(time.Millisecond).String()
}

type ListingSummary struct {
	Pages        int     `json:"pages"`
	PagesFailed  int     `json:"pages_failed"`
	MoviesStored int     `json:"movies_stored"`
	Elapsed      Elapsed `json:"elapsed"`
}

func (s ListingSummary) GetSummary() string {
	return fmt.Sprintf("listing: %d pages (%d failed), %d movies stored", s.Pages, s.PagesFailed, s.MoviesStored)
}

type MetadataSummary struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Failed    int     `json:"failed"`
	Skipped   int     `json:"skipped"`
	Elapsed   Elapsed `json:"elapsed"`
}

func (s MetadataSummary) GetSummary() string {
	return fmt.Sprintf("metadata: %d/%d completed, %d failed, %d skipped", s.Completed, s.Total, s.Failed, s.Skipped)
}

type ReviewSummary struct {
	TotalMovies  int     `json:"total_movies"`
	TotalReviews int     `json:"total_reviews"`
	FailedMovies int     `json:"failed_movies"`
	Elapsed      Elapsed `json:"elapsed"`
}

func (s ReviewSummary) GetSummary() string {
	return fmt.Sprintf("reviews: %d reviews from %d movies, %d movies failed", s.TotalReviews, s.TotalMovies, s.FailedMovies)
}

type AnalysisSummary struct {
	ProcessedReviews int     `json:"processed_reviews"`
	Batches          int     `json:"batches"`
	FailedBatches    int     `json:"failed_batches"`
	Elapsed          Elapsed `json:"elapsed"`
}

func (s AnalysisSummary) GetSummary() string {
	return fmt.Sprintf("analysis: %d reviews scored in %d batches, %d batches failed", s.ProcessedReviews, s.Batches, s.FailedBatches)
}
