package ws_progress

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	usecase_crawl "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/crawl"
	"github.com/gorilla/websocket"
)

const EventCrawlState = "CRAWL_STATE"

// Event is one crawl state transition as sent to subscribers.
type Event struct {
	Type   string    `json:"type"`
	Target string    `json:"target"`
	Page   int       `json:"page"`
	State  string    `json:"state"`
	At     time.Time `json:"at"`
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans crawl progress out to websocket subscribers. Slow subscribers are
// dropped, publishing never blocks the crawl.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	now     func() time.Time
	logger  *slog.Logger
}

type HubOption func(*Hub)

func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*Client]bool),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Observe matches the crawl observer hook.
func (h *Hub) Observe(target string, page int, s usecase_crawl.State) {
	h.Publish(Event{
		Type:   EventCrawlState,
		Target: target,
		Page:   page,
		State:  s.String(),
		At:     h.now().UTC(),
	})
}

func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.Any("error", err))
		return
	}
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.drop(client)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.logger.Debug("subscriber registered", slog.Int("subscribers", len(h.clients)))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(client)
}

// drop must be called with mu held.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Debug("subscriber removed", slog.Int("subscribers", len(h.clients)))
}

func (h *Hub) readLoop(client *Client) {
	defer func() {
		h.remove(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(client *Client) {
	defer client.conn.Close()

	for msg := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
