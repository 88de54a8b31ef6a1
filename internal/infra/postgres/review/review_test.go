package infra_postgres_review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type ReviewInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	mock       sqlmock.Sqlmock
	repository *Repository
	ctx        context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &resources{
		mock:       mock,
		repository: New(sqlx.NewDb(db, "sqlmock")),
		ctx:        context.Background(),
	}
}

var columns = []string{
	"id", "movie_id", "author", "content", "rating", "date", "likes", "comments", "letterboxd_url", "sentiment_score",
}

func newReview(movieID uuid.UUID, content string) model.Review {
	author := "karthik"
	r := model.Review{
		MovieID:       movieID,
		Author:        &author,
		Content:       content,
		Date:          time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Likes:         3,
		LetterboxdURL: "https://letterboxd.com/film/vikram-2022/reviews/by/activity/page/1/",
	}
	r.ID = r.NaturalKey()
	return r
}

func (s *ReviewInfraUnitSuite) TestUpsertReviews(t provider.T) {
	t.Parallel()

	movieID := uuid.New()
	reviews := []model.Review{newReview(movieID, "Mass!"), newReview(movieID, "")}

	t.Run("Should upsert keyed on id", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectBegin()
		for _, rv := range reviews {
			r.mock.ExpectExec("INSERT INTO reviews (.+) ON CONFLICT \\(id\\) DO UPDATE").
				WithArgs(rv.ID, movieID, sqlmock.AnyArg(), rv.Content, sqlmock.AnyArg(), sqlmock.AnyArg(), rv.Likes, rv.Comments, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		r.mock.ExpectCommit()

		n, err := r.repository.UpsertReviews(r.ctx, reviews)
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})

	t.Run("Should surface persistence failures", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectBegin()
		r.mock.ExpectExec("INSERT INTO reviews").WillReturnError(errors.New("fk violation"))
		r.mock.ExpectRollback()

		_, err := r.repository.UpsertReviews(r.ctx, reviews)
		assert.ErrorIs(t, err, model.ErrPersistence)
		assert.ErrorContains(t, err, "fk violation")
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})
}

func (s *ReviewInfraUnitSuite) TestListForScoring(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		unscoredOnly bool
		query        string
	}{
		{name: "Should filter unscored reviews", unscoredOnly: true, query: "WHERE id > \\$1 AND sentiment_score IS NULL ORDER BY id LIMIT \\$2"},
		{name: "Should page over every review", unscoredOnly: false, query: "WHERE id > \\$1 ORDER BY id LIMIT \\$2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			after := uuid.New()
			id := uuid.New()
			date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

			rows := sqlmock.NewRows(columns).
				AddRow(id.String(), uuid.New().String(), nil, "so good", nil, date, 0, 0, nil, nil)
			r.mock.ExpectQuery(tc.query).WithArgs(after, 50).WillReturnRows(rows)

			got, err := r.repository.ListForScoring(r.ctx, after, 50, tc.unscoredOnly)
			assert.NoError(t, err)
			if assert.Len(t, got, 1) {
				assert.Equal(t, id, got[0].ID)
				assert.Equal(t, "so good", got[0].Content)
				assert.Nil(t, got[0].Author)
				assert.Nil(t, got[0].SentimentScore)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (s *ReviewInfraUnitSuite) TestLoadByMovie(t provider.T) {
	r := initResources(t)
	movieID := uuid.New()
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow(uuid.New().String(), movieID.String(), "karthik", "Mass!", 4.5, date, 12, 3, "https://x/", 0.8)
	r.mock.ExpectQuery("FROM reviews WHERE movie_id = \\$1").WithArgs(movieID).WillReturnRows(rows)

	got, err := r.repository.Load(r.ctx, &movieID)
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, movieID, got[0].MovieID)
		assert.Equal(t, 12, got[0].Likes)
		if assert.NotNil(t, got[0].SentimentScore) {
			assert.Equal(t, 0.8, *got[0].SentimentScore)
		}
	}
	assert.NoError(t, r.mock.ExpectationsWereMet())
}

func (s *ReviewInfraUnitSuite) TestUpdateSentiments(t provider.T) {
	t.Parallel()

	updates := []model.SentimentUpdate{
		{ReviewID: uuid.New(), Score: 0.5},
		{ReviewID: uuid.New(), Score: -1},
	}

	t.Run("Should write every score", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectBegin()
		for _, u := range updates {
			r.mock.ExpectExec("UPDATE reviews SET sentiment_score").
				WithArgs(u.ReviewID, u.Score).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		r.mock.ExpectCommit()

		assert.NoError(t, r.repository.UpdateSentiments(r.ctx, updates))
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})

	t.Run("Should fail on unknown review", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectBegin()
		r.mock.ExpectExec("UPDATE reviews SET sentiment_score").WillReturnResult(sqlmock.NewResult(0, 0))
		r.mock.ExpectRollback()

		err := r.repository.UpdateSentiments(r.ctx, updates)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})
}

func TestReviewInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(ReviewInfraUnitSuite))
}
