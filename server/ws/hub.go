// Package ws runs the realtime hub on its own listener. fiber sits on
// fasthttp, which cannot hijack a connection for gorilla, so the hub
// gets a plain net/http server.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/seoultrader/server/server/handlers"
	"github.com/seoultrader/server/trader/database/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the wire envelope every broadcast uses.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans broadcast events out to every connected client. A client
// that cannot keep up is dropped rather than allowed to block the rest.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBuffer),
	}
}

// Run owns the client set. Only this goroutine touches it.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			slog.Info("Realtime client connected",
				slog.String("type", "system"),
				slog.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues one event for every client. Never blocks; if the hub
// is saturated the event is dropped.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		slog.Error("Failed to encode realtime event",
			slog.String("type", "error"),
			slog.String("event", eventType),
			slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		slog.Warn("Realtime broadcast dropped, hub saturated",
			slog.String("type", "system"),
			slog.String("event", eventType))
	}
}

// TradeCompleted implements the trade coordinator's notifier.
func (h *Hub) TradeCompleted(playerID int64, trade *models.Trade) {
	h.Broadcast("trade_completed", map[string]interface{}{
		"player_id": playerID,
		"trade":     trade,
	})
}

// PricesUpdated implements the market scheduler's notifier.
func (h *Hub) PricesUpdated(prices []*models.MarketPrice) {
	h.Broadcast("prices_updated", prices)
}

// PlayerMoved implements the location handler's notifier.
func (h *Hub) PlayerMoved(playerID int64, nearby []handlers.NearbyMerchant) {
	h.Broadcast("player_moved", map[string]interface{}{
		"player_id":        playerID,
		"nearby_merchants": nearby,
	})
}

// ServeWS upgrades one HTTP request into a hub client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed",
			slog.String("type", "system"),
			slog.Any("error", err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// Listen serves the hub endpoint until the context is cancelled.
func (h *Hub) Listen(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Realtime hub listening",
		slog.String("type", "system"),
		slog.String("address", addr))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("realtime listener: %w", err)
	}
	return nil
}

// readPump discards inbound frames; the hub is broadcast only. Reading
// is still required to process control frames and detect disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
