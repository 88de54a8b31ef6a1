package s3mock

import (
	"context"
	"testing"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MockSuite struct {
	suite.Suite
}

func (s *MockSuite) TestRoundTrip(t provider.T) {
	st := New()
	snap := model.PageSnapshot{URL: "https://letterboxd.com/x/", Kind: model.PageReviews, Content: []byte("body")}

	key, err := st.Save(context.Background(), snap)
	assert.NoError(t, err)
	assert.Equal(t, "review-thread/"+snap.GetFilename(), key)

	data, err := st.Load(context.Background(), key)
	assert.NoError(t, err)
	assert.Equal(t, "body", string(data))

	_, err = st.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Len(t, st.Keys(), 1)
}

func TestMockSuite(t *testing.T) {
	suite.RunSuite(t, new(MockSuite))
}
