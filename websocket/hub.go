package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"polls-backend/events"

	"github.com/gorilla/websocket"
)

// Message 定义WebSocket消息格式
type Message struct {
	Type       string      `json:"type"`
	QuestionID uint        `json:"question_id"`
	Payload    interface{} `json:"payload"`
}

// MessageTypeVote is sent after a choice of the question received a vote.
const MessageTypeVote = "vote"

// Client 代表一个WebSocket连接客户端
type Client struct {
	QuestionID uint
	conn       *websocket.Conn
	send       chan []byte
}

// Hub keeps the connected clients grouped by question and pushes vote
// events to them. It implements events.Publisher.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub 创建一个新的Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.QuestionID]; !ok {
				h.clients[client.QuestionID] = make(map[*Client]bool)
			}
			h.clients[client.QuestionID][client] = true
			n := len(h.clients[client.QuestionID])
			h.mu.Unlock()
			log.Printf("live client registered for question %d, total clients: %d", client.QuestionID, n)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Printf("live client unregistered for question %d", client.QuestionID)
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	group, ok := h.clients[client.QuestionID]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}
	delete(group, client)
	close(client.send)
	if len(group) == 0 {
		delete(h.clients, client.QuestionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, group := range h.clients {
		for client := range group {
			h.remove(client)
		}
	}
}

// Publish broadcasts the event to clients watching its question.
func (h *Hub) Publish(_ context.Context, event events.VoteEvent) error {
	payload, err := json.Marshal(Message{
		Type:       MessageTypeVote,
		QuestionID: event.QuestionID,
		Payload:    event,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	var slow []*Client
	group := h.clients[event.QuestionID]
	for client := range group {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// clients with a full buffer are dropped
	if len(slow) > 0 {
		h.mu.Lock()
		for _, client := range slow {
			h.remove(client)
		}
		h.mu.Unlock()
	}
	return nil
}

// Close is a no-op; the hub stops with the context passed to Run.
func (h *Hub) Close() error { return nil }

// ClientCount returns how many clients watch the question.
func (h *Hub) ClientCount(questionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[questionID])
}

// RegisterClient 注册客户端到Hub. It returns false once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient 从Hub中注销客户端
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
