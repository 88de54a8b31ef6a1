package usecase_ranking

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

const titleWidth = 47

// WriteTable prints the rankings as a fixed width table.
func WriteTable(w io.Writer, entries []model.RankingEntry) error {
	var b strings.Builder
	b.WriteString("\n=== TAMIL MOVIES RANKING ===\n\n")
	fmt.Fprintf(&b, "%-6s%-50s%-10s%-10s%-15s%-10s%-10s\n", "Rank", "Title", "Score", "Reviews", "Avg Sentiment", "Likes", "Comments")
	b.WriteString(strings.Repeat("-", 100) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-6d%-50s%-10s%-10d%-15s%-10d%-10d\n",
			e.Rank,
			shorten(e.Title),
			formatScore(e.RankingScore),
			e.ReviewCount,
			formatScore(e.AverageSentiment),
			e.TotalLikes,
			e.TotalComments,
		)
	}
	b.WriteString("\n" + strings.Repeat("=", 100) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func shorten(title string) string {
	if utf8.RuneCountInString(title) <= titleWidth {
		return title
	}
	return string([]rune(title)[:titleWidth]) + "..."
}

// formatScore prints the shortest exact form, keeping a ".0" on whole numbers.
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
