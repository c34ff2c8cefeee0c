package server

import (
	"encoding/json"
	"sync"
	"time"

	"lumo/internal/domain/photo"
	"lumo/pkg/logger"
)

// GalleryEvent is the wire format pushed to live gallery viewers when a
// guest's photo is admitted.
type GalleryEvent struct {
	Type             string    `json:"type"`
	PhotoID          string    `json:"photo_id"`
	OriginalFilename string    `json:"original_filename"`
	GuestName        string    `json:"guest_name,omitempty"`
	GuestMessage     string    `json:"guest_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Hub fans admitted photos out to the websocket viewers of each event.
// Clients are grouped by the upload token value of the gallery they watch.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan galleryBroadcast
	log        *logger.Logger

	mu       sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

type galleryBroadcast struct {
	tokenValue string
	payload    []byte
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan galleryBroadcast, 256),
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case client := <-h.register:
				h.handleRegister(client)
			case client := <-h.unregister:
				h.handleUnregister(client)
			case msg := <-h.broadcast:
				h.handleBroadcast(msg)
			case <-h.stopChan:
				h.closeAll()
				return
			}
		}
	}()
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.stopChan)
	h.wg.Wait()
}

// PhotoAdmitted implements services.Feed. Admission must never block on a
// slow viewer, so a full broadcast queue drops the event.
func (h *Hub) PhotoAdmitted(tokenValue string, p photo.Photo) {
	payload, err := json.Marshal(GalleryEvent{
		Type:             "photo_admitted",
		PhotoID:          p.ID.String(),
		OriginalFilename: p.OriginalFilename,
		GuestName:        p.GuestName,
		GuestMessage:     p.GuestMessage,
		CreatedAt:        p.CreatedAt,
	})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- galleryBroadcast{tokenValue: tokenValue, payload: payload}:
	default:
		if h.log != nil {
			h.log.Warnf("gallery hub: broadcast queue full, dropping event for token %s", tokenValue)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.clients[client.tokenValue]
	if !ok {
		group = make(map[*Client]bool)
		h.clients[client.tokenValue] = group
	}
	group[client] = true

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.clients[client.tokenValue]
	if !ok {
		return
	}
	if _, ok := group[client]; ok {
		delete(group, client)
		close(client.send)
		if len(group) == 0 {
			delete(h.clients, client.tokenValue)
		}
	}
}

func (h *Hub) handleBroadcast(msg galleryBroadcast) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[msg.tokenValue] {
		select {
		case client.send <- msg.payload:
		default:
			// Slow consumer; drop the event rather than the loop.
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tokenValue, group := range h.clients {
		for client := range group {
			close(client.send)
		}
		delete(h.clients, tokenValue)
	}
}
