package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Viewer connections are pinged every pingPeriod and dropped when no pong
// arrives within idleTimeout.
const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingPeriod   = idleTimeout * 9 / 10

	// viewers only send subscriptions
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Client is one dashboard viewer
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	mu    sync.RWMutex
	topic string
}

// NewClient creates a client subscribed to topic and registers it with the hub
func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	client := newClient(hub, conn)
	client.topic = topic
	hub.add(client)
	return client
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
}

// Subscribe narrows the client's feed to one session; "" receives all.
func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.topic = topic
	c.mu.Unlock()
}

func (c *Client) wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return topic == "" || c.topic == "" || c.topic == topic
}

// Run serves the viewer until its connection closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump applies subscription messages and detects disconnection
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	c.conn.SetReadLimit(maxMessageSize)
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var sub Subscription
		if err := json.Unmarshal(data, &sub); err != nil {
			c.hub.logger.Debug("ignoring viewer message", "error", err)
			continue
		}
		c.Subscribe(sub.Session)
	}
}

// write sends one frame under the write deadline.
func (c *Client) write(frameType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(frameType, data)
}

// writePump owns all writes to the connection.
func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				// hub dropped or shut down this viewer
				c.write(websocket.CloseMessage, nil)
				return
			}
			frameType := websocket.TextMessage
			if msg.Type == BinaryMessage {
				frameType = websocket.BinaryMessage
			}
			err = c.write(frameType, msg.Data)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}
