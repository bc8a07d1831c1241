package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// 작업 진행 상황 메시지
type Update struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// 연결된 클라이언트 정보
type Client struct {
	conn  *websocket.Conn
	jobID string
	send  chan []byte
}

// Hub - jobID별 WebSocket 구독자를 관리하고 상태 변화를 push
type Hub struct {
	clients map[string]map[*Client]bool // jobID -> subscribers
	mutex   sync.RWMutex

	totalConnections int
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
	}
}

// Publish - 해당 작업의 모든 구독자에게 상태 업데이트 전송.
// Slow subscribers are dropped instead of blocking the worker.
func (h *Hub) Publish(jobID, status, message string) {
	update := Update{
		JobID:     jobID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("❌ [Progress] Failed to marshal update: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	subscribers := h.clients[jobID]
	for client := range subscribers {
		select {
		case client.send <- data:
		default:
			// 버퍼가 가득 찬 느린 클라이언트는 제거
			close(client.send)
			delete(subscribers, client)
			log.Printf("👋 [Progress] Dropped slow subscriber for job %s", jobID)
		}
	}
}

// ClientCount - 현재 연결된 구독자 수 (메트릭용)
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	total := 0
	for _, subscribers := range h.clients {
		total += len(subscribers)
	}
	return total
}

// TotalConnections - 서버 시작 이후 누적 연결 수 (메트릭용)
func (h *Hub) TotalConnections() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.totalConnections
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.jobID] == nil {
		h.clients[client.jobID] = make(map[*Client]bool)
	}
	h.clients[client.jobID][client] = true
	h.totalConnections++

	log.Printf("👤 [Progress] Subscriber joined job %s (Subscribers: %d, Total Connections: %d)",
		client.jobID, len(h.clients[client.jobID]), h.totalConnections)
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	subscribers, exists := h.clients[client.jobID]
	if !exists {
		return
	}
	if _, ok := subscribers[client]; ok {
		close(client.send)
		delete(subscribers, client)
	}
	if len(subscribers) == 0 {
		delete(h.clients, client.jobID)
	}
}

// HandleWebSocket - GET /ws?job=<jobId> 구독 핸들러
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		log.Printf("Missing job parameter")
		conn.Close()
		return
	}

	client := &Client{
		conn:  conn,
		jobID: jobID,
		send:  make(chan []byte, 256),
	}

	log.Printf("🔍 [Progress] New WebSocket connection - Job: %s", jobID)
	h.addClient(client)

	// 고루틴으로 읽기/쓰기 처리
	go client.writePump()
	go client.readPump(h)
}

// 클라이언트로부터 메시지 읽기 (구독 전용이므로 연결 종료 감지 용도)
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
}
