package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cwd-comments/cwd-backend/pkg/logger"
)

const (
	// 클라이언트 메시지 최대 수 (1초당)
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// Event 관리자 피드로 전송되는 이벤트
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   int64       `json:"at"` // unix ms
}

// ClientMessage 관리자 화면에서 보내는 메시지 (ping 만 지원)
type ClientMessage struct {
	Type string `json:"type"`
}

// Client 관리자 세션 하나
type Client struct {
	Hub       *Hub
	Conn      *Conn
	AdminName string
	Send      chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex

	closed bool // Send 닫힘 여부, Hub.mu 로 보호
}

// NewClient 세션 생성 (Hub 에 등록은 별도)
func NewClient(hub *Hub, conn *Conn, adminName string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		AdminName: adminName,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Hub 관리자 세션 관리 + 이벤트 브로드캐스트
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu  sync.RWMutex
	now func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 1024),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run Stop 이 호출될 때까지 등록/해제/브로드캐스트 처리
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				h.closeClient(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Admin feed client registered", map[string]interface{}{
				"admin":          client.AdminName,
				"total_sessions": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.closeClient(client)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Admin feed client unregistered", map[string]interface{}{
				"admin":              client.AdminName,
				"remaining_sessions": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// 느린 세션은 비동기로 정리
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"admin": client.AdminName,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// closeClient h.mu 쓰기 잠금 상태에서 호출
func (h *Hub) closeClient(client *Client) {
	delete(h.clients, client)
	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

// Stop Run 루프 종료 및 모든 세션 닫기
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Publish 모든 관리자 세션에 이벤트 전송. 버퍼가 차면 버림
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Data: payload, At: h.now().UnixMilli()})
	if err != nil {
		logger.Error("Failed to marshal admin event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount 연결된 세션 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage ping 에는 pong 으로 응답
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"admin": client.AdminName,
			"count": count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"admin": client.AdminName,
			"error": err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(Event{Type: "pong", At: h.now().UnixMilli()})
		h.sendTo(client, data)
	}
}

// sendTo 닫히지 않은 세션에만 non-blocking 전송
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.closed {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}
