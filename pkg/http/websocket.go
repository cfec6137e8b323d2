package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"debatewatch-server/pkg/messaging"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// WebSocketUpgrader configures the WebSocket connection
var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected WebSocket consumer
type Client struct {
	hub       *EventHub
	conn      *websocket.Conn
	send      chan []byte
	logger    *logrus.Logger
	sessionID string
}

// EventHub fans debate events out to WebSocket clients. Clients may
// subscribe to one session or receive everything. The hub implements
// messaging.EventPublisher so it can sit next to the AMQP publisher in
// a fanout.
type EventHub struct {
	logger             *logrus.Logger
	clients            map[*Client]bool
	sessionSubscribers map[string]map[*Client]bool
	broadcast          chan *messaging.Event
	register           chan *Client
	unregister         chan *Client
}

// NewEventHub creates a new event hub
func NewEventHub(logger *logrus.Logger) *EventHub {
	return &EventHub{
		logger:             logger,
		clients:            make(map[*Client]bool),
		sessionSubscribers: make(map[string]map[*Client]bool),
		broadcast:          make(chan *messaging.Event, 64),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
	}
}

// PublishEvent implements messaging.EventPublisher
func (h *EventHub) PublishEvent(event *messaging.Event) error {
	select {
	case h.broadcast <- event:
	default:
		// A saturated hub must not stall the analysis pipeline
		h.logger.Warn("WebSocket broadcast buffer full, dropping event")
	}
	return nil
}

// IsConnected implements messaging.EventPublisher
func (h *EventHub) IsConnected() bool {
	return true
}

// Run starts the event hub loop
func (h *EventHub) Run(ctx context.Context) {
	h.logger.Info("Starting WebSocket event hub")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Shutting down WebSocket event hub")
			return

		case client := <-h.register:
			h.clients[client] = true
			if client.sessionID != "" {
				if _, exists := h.sessionSubscribers[client.sessionID]; !exists {
					h.sessionSubscribers[client.sessionID] = make(map[*Client]bool)
				}
				h.sessionSubscribers[client.sessionID][client] = true
			}
			h.logger.WithField("session_id", client.sessionID).Info("WebSocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if client.sessionID != "" {
					if subscribers, exists := h.sessionSubscribers[client.sessionID]; exists {
						delete(subscribers, client)
						if len(subscribers) == 0 {
							delete(h.sessionSubscribers, client.sessionID)
						}
					}
				}
				h.logger.Info("WebSocket client disconnected")
			}

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal event for broadcast")
				continue
			}

			for client := range h.clients {
				// Session subscribers only see their own session's events
				if client.sessionID != "" && client.sessionID != event.SessionID {
					continue
				}
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket subscription. The
// optional session_id query parameter scopes the stream to one session.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 32),
		logger:    h.logger,
		sessionID: r.URL.Query().Get("session_id"),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains client messages; the stream is server-to-client only
func (c *Client) readPump() {
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

// writePump pushes hub messages and keepalive pings to the client
func (c *Client) writePump() {
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
