package ws

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
)

// Client is one websocket observer. Messages queued with Write are sent in
// order by a single writer goroutine.
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	compression bool
}

func NewClient(conn *websocket.Conn, compression bool) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, 128),
		compression: compression,
	}
}

// Serve runs the client until the peer disconnects or ctx is done. Inbound
// messages are ignored.
func (c *Client) Serve(ctx context.Context) error {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.runWriter()
	}()

	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-writerDone:
			c.conn.Close()
		}
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				ctx.Err() != nil || errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}

			return err
		}
	}
}

func (c *Client) runWriter() {
	for msg := range c.send {
		msgType := websocket.TextMessage
		if c.compression {
			compressed, err := Compress(msg)
			if err != nil {
				continue
			}

			msg, msgType = compressed, websocket.BinaryMessage
		}

		if err := c.conn.WriteMessage(msgType, msg); err != nil {
			return
		}
	}
}
