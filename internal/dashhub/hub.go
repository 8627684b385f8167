// Package dashhub fans complaint events out to connected dashboard clients
// over websockets. Events arrive via Redis Pub/Sub so every backend instance
// serves its own dashboard connections from the shared stream.
package dashhub

import (
	"log"

	"github.com/mayankshukla2904/nagrik-backend/internal/models"
)

// Client is the interface for one dashboard connection. It abstracts the
// underlying transport so the hub can manage connections uniformly.
type Client interface {
	// GetID returns the unique identifier of this connection.
	GetID() string
	// GetSendChannel returns the channel the hub pushes events into.
	// It is a send-only channel.
	GetSendChannel() chan<- models.ComplaintEvent
	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}

// Hub owns the set of connected dashboard clients. All map mutation happens
// on the Run goroutine; other goroutines talk to it through the channels.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.ComplaintEvent
}

func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.ComplaintEvent, 64),
	}
}

// Run processes registrations, disconnects, and broadcasts. Start it once,
// as a goroutine, before accepting websocket upgrades.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetID()] = client
			client.Run()
			log.Printf("INFO: Dashboard client %s connected (%d online).", client.GetID(), len(h.Clients))

		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client.GetID()]; ok {
				delete(h.Clients, client.GetID())
				client.Close()
				log.Printf("INFO: Dashboard client %s disconnected (%d online).", client.GetID(), len(h.Clients))
			}

		case event := <-h.BroadcastCh:
			for id, client := range h.Clients {
				select {
				case client.GetSendChannel() <- event:
				default:
					// A consumer that cannot keep up is dropped rather
					// than allowed to stall the broadcast loop.
					delete(h.Clients, id)
					client.Close()
					log.Printf("WARN: Dropped slow dashboard client %s.", id)
				}
			}
		}
	}
}
