// Package server exposes a flyover controller to browser map clients over
// websockets. Camera commands are broadcast to every client; client target,
// lifecycle and touch messages are fed back to the controller.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ivlev/flyover/internal/camera"
	"github.com/ivlev/flyover/internal/lifecycle"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256

	maxMessageSize = 4096 // inbound envelopes are small JSON objects
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// map clients are served from anywhere during development
		return true
	},
}

// Handler receives client events. Implementations must not block.
type Handler interface {
	Target(center camera.Coordinate, altitude *float64)
	Lifecycle(p lifecycle.Phase)
	Touch()
}

// Hub fans camera commands out to connected clients. It implements
// camera.Actuator; commands never block the caller and are dropped when the
// hub is saturated.
type Hub struct {
	region     camera.Region
	backend    string
	supports3D bool
	handler Handler
	logger  *log.Logger

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// last camera command, replayed to late joiners
	last *Message
}

// NewHub creates a hub. Every client is greeted with region and backend.
func NewHub(region camera.Region, backend string, handler Handler, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		region:     region,
		backend:    backend,
		supports3D: true,
		handler:    handler,
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetSupports3D sets the capability announced in hello messages. It must be
// called before Run.
func (h *Hub) SetSupports3D(ok bool) { h.supports3D = ok }

func (h *Hub) SetCameraImmediate(p camera.Pose) {
	h.publish(cameraMessage(ModeImmediate, p, 0))
}

func (h *Hub) SetCameraAnimated(p camera.Pose, d time.Duration) {
	h.publish(cameraMessage(ModeAnimated, p, d))
}

func (h *Hub) publish(m Message) {
	select {
	case h.broadcast <- m:
	default:
		h.logger.Printf("[!] hub: broadcast queue full, dropping %s command", m.Mode)
	}
}

// Run handles registration and broadcasting until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				h.drop(client)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = true
			supports3D := h.supports3D
			hello := Message{
				Type:       MessageTypeHello,
				Client:     client.id,
				Region:     &h.region,
				Backend:    h.backend,
				Supports3D: &supports3D,
				Timestamp:  time.Now(),
			}
			h.send(client, hello)
			if h.last != nil && h.clients[client] {
				h.send(client, *h.last)
			}
			h.logger.Printf("[*] hub: client %s connected", client.id)

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				h.logger.Printf("[*] hub: client %s disconnected", client.id)
			}

		case message := <-h.broadcast:
			m := message
			h.last = &m
			for client := range h.clients {
				h.send(client, message)
			}
		}
	}
}

// send queues m for client, dropping clients that cannot keep up.
func (h *Hub) send(client *Client, m Message) {
	select {
	case client.send <- m:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// ServeHTTP upgrades the request to a websocket client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[!] hub: websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
		errs: make(chan Message, 16),
		id:   uuid.NewString(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Mux returns the HTTP routes of the hub.
func (h *Hub) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	return mux
}
