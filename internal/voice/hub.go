package voice

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	sendBufferSize = 128
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection wraps a websocket and coordinates outbound writes via a buffered
// channel, so broadcasts from other sockets never block on a slow client.
type Connection struct {
	SocketId string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

func NewConnection(socketId string, ws *websocket.Conn) *Connection {
	return &Connection{
		SocketId: socketId,
		ws:       ws,
		send:     make(chan []byte, sendBufferSize),
		close:    make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. A full buffer closes the connection to
// keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// Hub indexes live connections by socket id and relays signaling frames
// between them.
type Hub struct {
	Log *zap.Logger

	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewHub(zap *zap.Logger) *Hub {
	return &Hub{
		Log:         zap,
		connections: make(map[string]*Connection),
	}
}

func (hub *Hub) Register(connection *Connection) {
	hub.mu.Lock()
	hub.connections[connection.SocketId] = connection
	hub.mu.Unlock()
}

func (hub *Hub) Unregister(socketId string) {
	hub.mu.Lock()
	delete(hub.connections, socketId)
	hub.mu.Unlock()
}

// SendTo delivers payload to one socket. Unknown targets are dropped
// silently: the peer raced a disconnect, which signaling treats as normal.
func (hub *Hub) SendTo(socketId string, payload []byte) {
	hub.mu.RLock()
	connection, ok := hub.connections[socketId]
	hub.mu.RUnlock()

	if !ok {
		hub.Log.Debug("dropping frame for unknown socket", zap.String("socketId", socketId))
		return
	}

	if err := connection.Send(payload); err != nil {
		hub.Log.Debug("dropping frame for closed socket", zap.String("socketId", socketId))
	}
}

// Broadcast delivers payload to every given socket except the sender.
func (hub *Hub) Broadcast(socketIds []string, exclude string, payload []byte) {
	for _, socketId := range socketIds {
		if socketId == exclude {
			continue
		}
		hub.SendTo(socketId, payload)
	}
}
