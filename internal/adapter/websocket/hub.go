package websocket

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/queue"
)

const sendBuffer = 64

// Conn is the part of a websocket connection the hub needs
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub tracks the websocket clients of this process by user and pushes
// messages to them. Maps are owned by the Run goroutine.
type Hub struct {
	// Connected clients per user. A user may hold several tabs.
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	direct     chan envelope
	done       chan struct{}

	// Count of connected clients, readable without going through Run.
	mu    sync.RWMutex
	count int

	log *zap.Logger
}

type envelope struct {
	userID  string
	message []byte
}

type Client struct {
	hub    *Hub
	conn   Conn
	send   chan []byte
	userID string
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and deliveries until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.setCount(0)
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			h.addCount(1)
		case client := <-h.unregister:
			h.remove(client)
		case env := <-h.direct:
			for client := range h.clients[env.userID] {
				select {
				case client.send <- env.message:
				default:
					// Slow consumer
					h.log.Warn("Dropping websocket client with full buffer", zap.String("user_id", client.userID))
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.addCount(-1)
}

// SendToUser queues message for every connection of userID. It never blocks
// the caller; when the hub is saturated the message is dropped.
func (h *Hub) SendToUser(userID string, message []byte) {
	select {
	case h.direct <- envelope{userID: userID, message: message}:
	default:
		h.log.Warn("Websocket hub saturated, message dropped", zap.String("user_id", userID))
	}
}

// Serve registers conn for userID and blocks until the peer disconnects.
// Fiber's websocket handler must not return before the connection is done.
func (h *Hub) Serve(conn Conn, userID string) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// Connected returns the number of open client connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) addCount(delta int) {
	h.mu.Lock()
	h.count += delta
	h.mu.Unlock()
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Relay subscribes to subjects and pushes each event to the user it names.
// Events without a user are ignored.
func (h *Hub) Relay(mq queue.MessageQueue, subjects ...string) error {
	for _, subject := range subjects {
		subject := subject
		err := mq.Subscribe(subject, func(data []byte) error {
			evt, err := queue.DecodeEvent(data)
			if err != nil {
				return err
			}
			if evt.UserID == "" {
				return nil
			}
			h.SendToUser(evt.UserID, data)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// Push-only channel; reading keeps control frames flowing and detects disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
