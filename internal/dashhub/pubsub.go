package dashhub

import (
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/mayankshukla2904/nagrik-backend/internal/models"
)

// StartEventListener starts a goroutine that feeds the broadcast loop from a
// Redis subscription. Every instance listens to the same channel, so events
// published by any instance reach every connected dashboard.
func (h *Hub) StartEventListener(pubsub *redis.PubSub) {
	go func() {
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.ComplaintEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling Redis event: %v", err)
				continue
			}

			h.BroadcastCh <- event
		}
	}()
}
