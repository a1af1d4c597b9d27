// Package hub implements the realtime push channel backing service.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// ClientObserver is notified when the number of connected clients changes
type ClientObserver interface {
	SetPushClients(n int)
}

// Client represents a connected websocket client
type Client struct {
	id     string
	events chan []byte
}

// Hub manages websocket client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan interface{}
	done       chan struct{}
	stopOnce   sync.Once

	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
	observer ClientObserver

	listener net.Listener
	server   *http.Server
}

// New creates a new Hub
func New(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan interface{}, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Listen binds addr, starts the event loop and serves GET /ws on the listener
func Listen(ctx context.Context, addr string, logger logrus.FieldLogger, observer ClientObserver) (*Hub, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot bind port %s: %w", addr, err)
	}

	h := New(logger)
	h.observer = observer
	h.listener = ln

	router := mux.NewRouter()
	router.Handle("/ws", h).Methods(http.MethodGet)
	h.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go h.Run()
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Push channel server stopped")
		}
	}()

	logger.Infof("Push channel listening on %s", ln.Addr())
	return h, nil
}

// Addr returns the bound address, or nil for a hub without its own listener
func (h *Hub) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Run starts the hub's event loop. It returns after Close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.observe(n)
			h.logger.Debugf("Push client connected: %s (total: %d)", client.id, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.observe(n)
			h.logger.Debugf("Push client disconnected: %s (total: %d)", client.id, n)

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Warn("Failed to marshal event")
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.events <- data:
				default:
					// Client is slow, skip this message
					h.logger.Debugf("Push client %s is slow, skipping message", client.id)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			h.observe(0)
			return
		}
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the listener, disconnects clients and stops the event loop
func (h *Hub) Close() error {
	var err error
	h.stopOnce.Do(func() {
		if h.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			defer cancel()
			err = h.server.Shutdown(ctx)
		}
		close(h.done)
	})
	return err
}

// ServeHTTP upgrades the request to a websocket and streams events to it
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.readPump(conn, client)
	h.writePump(conn, client)
}

// readPump discards inbound frames and detects disconnects
func (h *Hub) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) observe(n int) {
	if h.observer != nil {
		h.observer.SetPushClients(n)
	}
}
