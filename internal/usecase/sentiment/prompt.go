package usecase_sentiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

const systemPrompt = `You are a Tamil cinema sentiment analysis expert. Respond only with a JSON object of the form {"scores": [0.37, -0.73, 0.9]} holding one score per review, in the order the reviews were given.`

const promptHeader = `You are an expert Tamil cinema critic and sentiment analyst. You deeply understand Tamil cinema culture, narratives, and audience expectations. Analyze the following movie reviews considering:

1. Cultural context and Tamil cinema sensibilities
2. Local audience expectations and preferences
3. Technical aspects (direction, acting, music, etc.)
4. Emotional impact and cultural resonance
5. Commercial and artistic merit

For each review, provide a sentiment score between -1 and 1, where:
- -1 represents extremely negative/disappointing
- -0.5 represents moderately negative
- 0 represents neutral/mixed feelings
- 0.5 represents moderately positive
- 1 represents extremely positive/exceptional

Output format: provide ONLY the numerical scores without any additional text or explanation.

Example output:
{"scores": [0.37, -0.73, 0.9, 0.16, -0.24]}

Reviews to analyze:
`

var ErrNoScores = errors.New("no scores in response")

// BuildPrompt enumerates the batch by position starting at 0.
func BuildPrompt(batch []model.Review) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for i, r := range batch {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Review %d: %s", i, r.Content)
	}
	fmt.Fprintf(&b, "\n\nReturn exactly %d scores, in the same order as the reviews.", len(batch))
	return b.String()
}

// ParseScores reads a bare JSON array or an object holding the array under
// "scores". Null entries stay nil.
func ParseScores(text string) ([]*float64, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "[") {
		var scores []*float64
		if err := json.Unmarshal([]byte(text), &scores); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoScores, err)
		}
		return scores, nil
	}

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start != -1 && end > start {
		var wrapped struct {
			Scores []*float64 `json:"scores"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapped); err == nil && wrapped.Scores != nil {
			return wrapped.Scores, nil
		}
	}

	start, end = strings.Index(text, "["), strings.LastIndex(text, "]")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: %q", ErrNoScores, truncate(text, 120))
	}
	var scores []*float64
	if err := json.Unmarshal([]byte(text[start:end+1]), &scores); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoScores, err)
	}
	return scores, nil
}

func clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	default:
		return v
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
