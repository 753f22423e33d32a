package websocket

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrUnknownQuestion is returned by a QuestionChecker for missing questions.
var ErrUnknownQuestion = errors.New("unknown question")

// QuestionChecker reports whether live results may be served for a question.
type QuestionChecker func(ctx context.Context, questionID uint) error

// Handler WebSocket处理器
type Handler struct {
	hub   *Hub
	check QuestionChecker
}

// NewHandler 创建WebSocket处理器
func NewHandler(hub *Hub, check QuestionChecker) *Handler {
	return &Handler{hub: hub, check: check}
}

// Live upgrades the request and streams vote events of one question.
func (h *Handler) Live(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	questionID := uint(id)

	if h.check != nil {
		if err := h.check(c.Request.Context(), questionID); err != nil {
			if errors.Is(err, ErrUnknownQuestion) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
				return
			}
			log.Printf("live results check for question %d failed: %v", questionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load question"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("failed to upgrade to websocket: %v", err)
		return
	}

	client := &Client{
		QuestionID: questionID,
		conn:       conn,
		send:       make(chan []byte, 256),
	}
	if !h.hub.RegisterClient(client) {
		conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

// readPump drains the connection; clients only listen.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.UnregisterClient(client)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one JSON document per frame
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
