package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Event is a change-notification ping. Clients re-fetch the snapshot on
// receipt; no auction data travels over the socket.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Hub fans out state-changed pings to connected websocket clients. The
// auction core never depends on it; handlers publish after a successful
// mutation and a slow client just misses pings.
type Hub struct {
	logger *zap.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   map[chan []byte]struct{}{},
	}
}

// Broadcast queues an event to every subscriber, dropping it for clients
// whose buffers are full.
func (h *Hub) Broadcast(eventType string) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, At: time.Now().UTC()})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Serve upgrades the request and streams pings until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				if h.logger != nil {
					h.logger.Debug("notify write failed", zap.Error(err))
				}
				return err
			}
		}
	}
}
