package remotetest

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// conn is one client connected to the fake terminal. Writes go through a
// buffered channel drained by writePump, the only goroutine writing data
// frames.
type conn struct {
	id           string
	ws           *websocket.Conn
	sendCh       chan []byte
	closeCh      chan struct{}
	writeWg      sync.WaitGroup
	writeTimeout time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newConn(id string, ws *websocket.Conn, logger *zap.Logger) *conn {
	c := &conn{
		id:           id,
		ws:           ws,
		sendCh:       make(chan []byte, 100),
		closeCh:      make(chan struct{}),
		writeTimeout: 10 * time.Second,
		logger:       logger.With(zap.String("conn", id)),
	}

	c.writeWg.Add(1)
	go c.writePump()

	return c
}

func (c *conn) writePump() {
	defer c.writeWg.Done()

	for {
		select {
		case <-c.closeCh:
			return
		case data := <-c.sendCh:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.shutdown()
				return
			}
		}
	}
}

func (c *conn) read() (string, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// write queues text. A full buffer drops the connection.
func (c *conn) write(text string) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	select {
	case c.sendCh <- []byte(text):
	default:
		c.logger.Warn("send buffer full, closing connection")
		c.shutdown()
	}
}

// closeWith starts a close handshake. The read loop ends once the client
// echoes the close frame.
func (c *conn) closeWith(code int, reason string) error {
	return c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second),
	)
}

func (c *conn) shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.closeCh)
	c.mu.Unlock()

	return c.ws.Close()
}
