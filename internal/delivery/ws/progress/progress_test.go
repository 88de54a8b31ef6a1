package ws_progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	usecase_crawl "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/crawl"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ProgressSuite struct {
	suite.Suite
	hub    *Hub
	server *httptest.Server
}

func (s *ProgressSuite) BeforeEach(t provider.T) {
	gin.SetMode(gin.TestMode)
	s.hub = NewHub(WithLogger(logger.Discard()))
	s.hub.now = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }

	engine := gin.New()
	New(s.hub, WithControllerLogger(logger.Discard())).RegisterRoutes(engine.Group("/api/v1"))
	s.server = httptest.NewServer(engine)
}

func (s *ProgressSuite) AfterEach(t provider.T) {
	s.server.Close()
}

func (s *ProgressSuite) dial(t provider.T) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/v1/ws/crawl"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func (s *ProgressSuite) TestSubscriberReceivesTransitions(t provider.T) {
	conn := s.dial(t)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	s.hub.Observe("https://letterboxd.com/film/vikram/", 2, usecase_crawl.StateExtracting)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, Event{
		Type:   EventCrawlState,
		Target: "https://letterboxd.com/film/vikram/",
		Page:   2,
		State:  "EXTRACTING",
		At:     time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}, got)
}

func (s *ProgressSuite) TestClosedSubscriberIsRemoved(t provider.T) {
	conn := s.dial(t)
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func (s *ProgressSuite) TestPublishWithoutSubscribers(t provider.T) {
	assert.NotPanics(t, func() {
		s.hub.Observe("listing", 1, usecase_crawl.StateDone)
	})
	assert.Zero(t, s.hub.Clients())
}

func (s *ProgressSuite) TestSlowSubscriberIsDropped(t provider.T) {
	client := &Client{send: make(chan []byte, 1)}
	s.hub.register(client)

	s.hub.Publish(Event{Type: EventCrawlState, State: "FETCHING"})
	s.hub.Publish(Event{Type: EventCrawlState, State: "EXTRACTING"})

	assert.Zero(t, s.hub.Clients())
	_, open := <-client.send
	assert.True(t, open)
	_, open = <-client.send
	assert.False(t, open)
}

func TestProgressSuite(t *testing.T) {
	suite.RunSuite(t, new(ProgressSuite))
}
