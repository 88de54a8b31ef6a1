//go:build !integration
// +build !integration

package usecase_sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	infra_memstore "github.com/aakumar2208/tamil-movies-scraper/internal/infra/memstore"
	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/aakumar2208/tamil-movies-scraper/internal/usecase/sentiment/mocks"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseSentimentUnitSuite struct {
	suite.Suite
}

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func testConfig() config.Sentiment {
	return config.Sentiment{
		BatchSize:    10,
		FetchSize:    1000,
		MaxRetries:   3,
		BaseBackoff:  60 * time.Second,
		BatchDelay:   0,
		LengthPolicy: config.LengthPolicyReject,
		UnscoredOnly: true,
	}
}

type resources struct {
	usecase   *Usecase
	completer *mocks.Completer
	repo      *mocks.Repository
	sleeps    *sleepRecorder
	ctx       context.Context
}

func initResources(t provider.T, cfg config.Sentiment) *resources {
	completer := mocks.NewCompleter(t)
	repo := mocks.NewRepository(t)
	sleeps := &sleepRecorder{}
	return &resources{
		usecase: New(completer, repo, cfg, config.LLM{Temperature: 0.7, MaxTokens: 4096},
			WithSleeper(sleeps.sleep),
			WithLogger(logger.Discard()),
		),
		completer: completer,
		repo:      repo,
		sleeps:    sleeps,
		ctx:       context.Background(),
	}
}

func reviews(n int, content func(i int) string) []model.Review {
	out := make([]model.Review, n)
	movieID := uuid.New()
	for i := range out {
		out[i] = model.Review{MovieID: movieID, Content: content(i)}
		out[i].ID = out[i].NaturalKey()
	}
	return out
}

func scoresJSON(scores ...float64) string {
	b, _ := json.Marshal(map[string][]float64{"scores": scores})
	return string(b)
}

// countReviews reports how many "Review N:" lines a prompt carries.
func countReviews(prompt string) int {
	return strings.Count(prompt, "\n\nReview ") + 1
}

func echoPositions(_ context.Context, req model.CompletionRequest) (string, error) {
	n := countReviews(req.Prompt)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = float64(i) / 10
	}
	return scoresJSON(scores...), nil
}

func (s *UsecaseSentimentUnitSuite) TestScoresFollowBatchPositions(t provider.T) {
	store := infra_memstore.New()
	movie := model.Movie{ID: uuid.New(), Title: "Vikram", LetterboxdURL: "https://letterboxd.com/film/vikram-2022/"}
	_, err := store.Movies().UpsertMovies(context.Background(), []model.Movie{movie})
	assert.NoError(t, err)

	batch := make([]model.Review, 30)
	for i := range batch {
		batch[i] = model.Review{MovieID: movie.ID, Content: fmt.Sprintf("review %d", i)}
		batch[i].ID = batch[i].NaturalKey()
	}
	_, err = store.Reviews().UpsertReviews(context.Background(), batch)
	assert.NoError(t, err)

	completer := mocks.NewCompleter(t)
	completer.On("Complete", mock.Anything, mock.Anything).Return(echoPositions).Times(3)

	uc := New(completer, store.Reviews(), testConfig(), config.LLM{}, WithLogger(logger.Discard()))
	summary, err := uc.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 30, summary.ProcessedReviews)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 0, summary.FailedBatches)

	stored, err := store.Reviews().Load(context.Background(), nil)
	assert.NoError(t, err)
	if assert.Len(t, stored, 30) {
		for k, r := range stored {
			if assert.NotNil(t, r.SentimentScore, "review %d", k) {
				assert.InDelta(t, float64(k%10)/10, *r.SentimentScore, 1e-9, "review %d", k)
			}
		}
	}
}

func (s *UsecaseSentimentUnitSuite) TestRetryBacksOffThenSucceeds(t provider.T) {
	r := initResources(t, testConfig())
	batch := reviews(2, func(i int) string { return fmt.Sprintf("r%d", i) })

	r.completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("429 quota")).Twice()
	r.completer.On("Complete", mock.Anything, mock.Anything).Return(scoresJSON(0.5, -0.5), nil).Once()

	updates, err := r.usecase.ScoreBatch(r.ctx, batch)
	assert.NoError(t, err)
	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second}, r.sleeps.waits)
	assert.Equal(t, []model.SentimentUpdate{
		{ReviewID: batch[0].ID, Score: 0.5},
		{ReviewID: batch[1].ID, Score: -0.5},
	}, updates)
	r.completer.AssertNumberOfCalls(t, "Complete", 3)
}

func (s *UsecaseSentimentUnitSuite) TestRetryExhaustion(t provider.T) {
	r := initResources(t, testConfig())
	batch := reviews(1, func(int) string { return "x" })

	r.completer.On("Complete", mock.Anything, mock.Anything).Return("not json at all", nil).Times(4)

	_, err := r.usecase.ScoreBatch(r.ctx, batch)
	assert.ErrorIs(t, err, model.ErrScoring)
	assert.ErrorIs(t, err, ErrNoScores)
	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second, 240 * time.Second}, r.sleeps.waits)
}

func (s *UsecaseSentimentUnitSuite) TestLengthPolicy(t provider.T) {
	batch := reviews(3, func(i int) string { return fmt.Sprintf("r%d", i) })

	t.Run("reject short response", func(t provider.T) {
		cfg := testConfig()
		cfg.MaxRetries = 0
		r := initResources(t, cfg)
		r.completer.On("Complete", mock.Anything, mock.Anything).Return(scoresJSON(0.1, 0.2), nil).Once()

		_, err := r.usecase.ScoreBatch(r.ctx, batch)
		assert.ErrorIs(t, err, ErrLengthMismatch)
		assert.Empty(t, r.sleeps.waits)
	})

	t.Run("reject long response", func(t provider.T) {
		cfg := testConfig()
		cfg.MaxRetries = 0
		r := initResources(t, cfg)
		r.completer.On("Complete", mock.Anything, mock.Anything).Return(scoresJSON(0.1, 0.2, 0.3, 0.4), nil).Once()

		_, err := r.usecase.ScoreBatch(r.ctx, batch)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("pad leaves the tail unscored", func(t provider.T) {
		cfg := testConfig()
		cfg.LengthPolicy = config.LengthPolicyPad
		r := initResources(t, cfg)
		r.completer.On("Complete", mock.Anything, mock.Anything).Return(`{"scores": [0.1, null]}`, nil).Once()

		updates, err := r.usecase.ScoreBatch(r.ctx, batch)
		assert.NoError(t, err)
		assert.Equal(t, []model.SentimentUpdate{{ReviewID: batch[0].ID, Score: 0.1}}, updates)
	})
}

func (s *UsecaseSentimentUnitSuite) TestScoresAreClamped(t provider.T) {
	r := initResources(t, testConfig())
	batch := reviews(2, func(i int) string { return fmt.Sprintf("r%d", i) })
	r.completer.On("Complete", mock.Anything, mock.Anything).Return("[1.7, -3]", nil).Once()

	updates, err := r.usecase.ScoreBatch(r.ctx, batch)
	assert.NoError(t, err)
	if assert.Len(t, updates, 2) {
		assert.Equal(t, 1.0, updates[0].Score)
		assert.Equal(t, -1.0, updates[1].Score)
	}
}

func (s *UsecaseSentimentUnitSuite) TestRunSkipsFailedBatch(t provider.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	r := initResources(t, cfg)

	page := reviews(20, func(i int) string {
		if i < 10 {
			return fmt.Sprintf("broken %d", i)
		}
		return fmt.Sprintf("fine %d", i)
	})

	r.repo.On("ListForScoring", mock.Anything, uuid.Nil, 1000, true).Return(page, nil).Once()
	r.completer.On("Complete", mock.Anything, mock.MatchedBy(func(req model.CompletionRequest) bool {
		return strings.Contains(req.Prompt, "broken")
	})).Return("", errors.New("upstream 500")).Once()
	r.completer.On("Complete", mock.Anything, mock.Anything).Return(echoPositions).Once()
	r.repo.On("UpdateSentiments", mock.Anything, mock.MatchedBy(func(u []model.SentimentUpdate) bool {
		return len(u) == 10 && u[0].ReviewID == page[10].ID
	})).Return(nil).Once()

	summary, err := r.usecase.Run(r.ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Batches)
	assert.Equal(t, 1, summary.FailedBatches)
	assert.Equal(t, 10, summary.ProcessedReviews)
}

func (s *UsecaseSentimentUnitSuite) TestRunPagesWithCursor(t provider.T) {
	cfg := testConfig()
	cfg.FetchSize = 2
	r := initResources(t, cfg)

	all := reviews(3, func(i int) string { return fmt.Sprintf("r%d", i) })

	r.repo.On("ListForScoring", mock.Anything, uuid.Nil, 2, true).Return(all[:2], nil).Once()
	r.repo.On("ListForScoring", mock.Anything, all[1].ID, 2, true).Return(all[2:], nil).Once()
	r.completer.On("Complete", mock.Anything, mock.Anything).Return(echoPositions).Twice()
	r.repo.On("UpdateSentiments", mock.Anything, mock.Anything).Return(nil).Twice()

	summary, err := r.usecase.Run(r.ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.ProcessedReviews)
	assert.Equal(t, 2, summary.Batches)
}

func (s *UsecaseSentimentUnitSuite) TestRunPersistenceFailureCountsAsFailedBatch(t provider.T) {
	r := initResources(t, testConfig())
	page := reviews(2, func(i int) string { return fmt.Sprintf("r%d", i) })

	r.repo.On("ListForScoring", mock.Anything, uuid.Nil, 1000, true).Return(page, nil).Once()
	r.completer.On("Complete", mock.Anything, mock.Anything).Return(echoPositions).Once()
	r.repo.On("UpdateSentiments", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	summary, err := r.usecase.Run(r.ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.FailedBatches)
	assert.Equal(t, 0, summary.ProcessedReviews)
}

func (s *UsecaseSentimentUnitSuite) TestRunStopsWhenCancelled(t provider.T) {
	r := initResources(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.usecase.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func (s *UsecaseSentimentUnitSuite) TestRunSurfacesFetchFailure(t provider.T) {
	r := initResources(t, testConfig())
	r.repo.On("ListForScoring", mock.Anything, uuid.Nil, 1000, true).Return(nil, errors.New("db down")).Once()

	_, err := r.usecase.Run(r.ctx)
	assert.ErrorContains(t, err, "db down")
}

func (s *UsecaseSentimentUnitSuite) TestParseScores(t provider.T) {
	tt := []struct {
		name    string
		text    string
		want    []float64
		wantErr bool
	}{
		{name: "object", text: `{"scores": [0.37, -0.73]}`, want: []float64{0.37, -0.73}},
		{name: "bare array", text: ` [1, 0, -1] `, want: []float64{1, 0, -1}},
		{name: "fenced object", text: "```json\n{\"scores\": [0.5]}\n```", want: []float64{0.5}},
		{name: "unquoted key", text: `{scores: [0.1, 0.2]}`, want: []float64{0.1, 0.2}},
		{name: "no numbers", text: "I cannot help with that", wantErr: true},
		{name: "wrong shape", text: `{"result": "positive"}`, wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t provider.T) {
			got, err := ParseScores(tc.text)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoScores)
				return
			}
			assert.NoError(t, err)
			if assert.Len(t, got, len(tc.want)) {
				for i := range tc.want {
					assert.Equal(t, tc.want[i], *got[i])
				}
			}
		})
	}
}

func (s *UsecaseSentimentUnitSuite) TestBuildPrompt(t provider.T) {
	p := BuildPrompt(reviews(2, func(i int) string { return fmt.Sprintf("content %d", i) }))
	assert.Contains(t, p, "Review 0: content 0\n\nReview 1: content 1")
	assert.Contains(t, p, "Return exactly 2 scores")
	assert.Equal(t, 2, countReviews(p))
}

func TestUsecaseSentimentUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseSentimentUnitSuite))
}
