// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Corphon/LitLensMCP/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketClient is one connected browser session.
type WebSocketClient struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	closed    int32
	lastPing  time.Time
	createdAt time.Time
}

// Close shuts the connection down once. The send channel is closed by
// the write pump's defer, not here.
func (client *WebSocketClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

func (client *WebSocketClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(client.lastPing) > timeout
}

// WebSocketManager tracks progress/reminder subscribers and fans
// messages out to them.
type WebSocketManager struct {
	clients       map[string]*WebSocketClient
	broadcast     chan []byte
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	shutdownCh    chan struct{}
	mutex         sync.RWMutex
	pingTimeout   time.Duration
	cleanupTicker *time.Ticker
}

func NewWebSocketManager() *WebSocketManager {
	manager := &WebSocketManager{
		clients:     make(map[string]*WebSocketClient),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *WebSocketClient, 16),
		unregister:  make(chan *WebSocketClient, 16),
		shutdownCh:  make(chan struct{}),
		pingTimeout: 60 * time.Second,
	}
	go manager.run()
	return manager
}

func (manager *WebSocketManager) run() {
	manager.cleanupTicker = time.NewTicker(30 * time.Second)
	defer manager.cleanupTicker.Stop()

	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)

		case client := <-manager.unregister:
			manager.unregisterClient(client)

		case <-manager.cleanupTicker.C:
			manager.cleanupExpired()

		case message := <-manager.broadcast:
			manager.fanOut(message)

		case <-manager.shutdownCh:
			manager.closeAll()
			return
		}
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	manager.clients[client.id] = client
	client.lastPing = time.Now()
	manager.mutex.Unlock()

	utils.GetLogger().Debug("websocket client connected", map[string]interface{}{
		"client_id": client.id,
	})
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	delete(manager.clients, client.id)
	manager.mutex.Unlock()

	if !client.IsClosed() {
		client.Close()
	}
}

func (manager *WebSocketManager) cleanupExpired() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for id, client := range manager.clients {
		if client.IsClosed() || client.IsExpired(manager.pingTimeout) {
			delete(manager.clients, id)
			if !client.IsClosed() {
				client.Close()
			}
		}
	}
}

func (manager *WebSocketManager) fanOut(message []byte) {
	manager.mutex.RLock()
	targets := make([]*WebSocketClient, 0, len(manager.clients))
	for _, client := range manager.clients {
		if !client.IsClosed() {
			targets = append(targets, client)
		}
	}
	manager.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- message:
		default:
			// queue full, drop the connection rather than block
			client.Close()
			select {
			case manager.unregister <- client:
			default:
			}
		}
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for id, client := range manager.clients {
		client.Close()
		delete(manager.clients, id)
	}
}

// Broadcast serializes the message and queues it for every client.
// Progress updates and study reminders both go through here.
func (manager *WebSocketManager) Broadcast(message map[string]interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		utils.GetLogger().Warn("broadcast message serialization failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	select {
	case manager.broadcast <- msgBytes:
	default:
	}
}

// ConnectionCount returns the number of live clients.
func (manager *WebSocketManager) ConnectionCount() int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	count := 0
	for _, client := range manager.clients {
		if !client.IsClosed() {
			count++
		}
	}
	return count
}

// Shutdown stops the manager loop and closes every connection.
func (manager *WebSocketManager) Shutdown() {
	select {
	case <-manager.shutdownCh:
	default:
		close(manager.shutdownCh)
	}
}

// Serve upgrades the request and runs the read/write pumps.
func (manager *WebSocketManager) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Warn("websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := &WebSocketClient{
		id:        uuid.NewString(),
		conn:      conn,
		send:      make(chan []byte, 64),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	manager.register <- client

	go manager.writePump(client)
	go manager.readPump(client)
}

func (manager *WebSocketManager) writePump(client *WebSocketClient) {
	pinger := time.NewTicker(manager.pingTimeout / 2)
	defer func() {
		pinger.Stop()
		close(client.send)
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pinger.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (manager *WebSocketManager) readPump(client *WebSocketClient) {
	defer func() {
		select {
		case manager.unregister <- client:
		default:
			client.Close()
		}
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(manager.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.lastPing = time.Now()
		client.conn.SetReadDeadline(time.Now().Add(manager.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.lastPing = time.Now()
		client.conn.SetReadDeadline(time.Now().Add(manager.pingTimeout))
	}
}
