package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ivlev/flyover/internal/lifecycle"
)

// Client is one connected map client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message // owned by the hub
	errs chan Message // replies to this client only
	id   string
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.logger.Printf("[!] hub: write to client %s failed: %v", c.id, err)
				return
			}

		case message := <-c.errs:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps client events from the websocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Printf("[!] hub: client %s: %v", c.id, err)
			}
			return
		}

		var message Message
		err = json.Unmarshal(data, &message)
		if err == nil {
			err = c.handleMessage(message)
		}
		if err != nil {
			c.reply(Message{Type: MessageTypeError, Error: err.Error(), Timestamp: time.Now()})
		}
	}
}

// reply queues m for this client only. Replies to a client that is not
// reading are dropped.
func (c *Client) reply(m Message) {
	select {
	case c.errs <- m:
	default:
	}
}

// handleMessage processes incoming messages from clients
func (c *Client) handleMessage(m Message) error {
	h := c.hub.handler
	if h == nil {
		return fmt.Errorf("no controller attached")
	}

	switch m.Type {
	case MessageTypeTarget:
		if m.Center == nil || !m.Center.Valid() {
			return fmt.Errorf("target needs a valid center")
		}
		h.Target(*m.Center, m.Altitude)
	case MessageTypeLifecycle:
		p, err := lifecycle.ParsePhase(m.Phase)
		if err != nil {
			return err
		}
		h.Lifecycle(p)
	case MessageTypeTouch:
		h.Touch()
	default:
		return fmt.Errorf("unknown message type: %s", m.Type)
	}
	return nil
}
