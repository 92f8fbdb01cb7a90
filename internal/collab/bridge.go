package collab

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
)

const bridgePattern = "collab:doc:*"

func bridgeChannel(docID string) string { return "collab:doc:" + docID }

// bridgeMessage wraps an event with the originating instance id so an
// instance never re-delivers its own publications.
type bridgeMessage struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Bridge relays room broadcasts between server instances over Redis
// pub/sub, one channel per document. It is optional: a standalone server
// simply never installs it.
type Bridge struct {
	id  string
	rdb *redis.Client
	hub *Hub
}

// NewBridge wires the bridge into hub: local broadcasts are published to
// Redis and remote publications are delivered to local rooms. Call Run
// to start consuming.
func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	b := &Bridge{id: uuid.NewString(), rdb: rdb, hub: hub}
	hub.SetPublisher(b.publishLocal)
	return b
}

func (b *Bridge) publishLocal(docID string, ev Event) {
	payload, err := json.Marshal(bridgeMessage{Origin: b.id, Event: ev})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(context.Background(), bridgeChannel(docID), payload).Err(); err != nil {
		logger.Warnf("bridge publish failed for document %s: %v", docID, err)
	}
}

// Run consumes remote publications until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, bridgePattern)
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var bm bridgeMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				logger.Warnf("bridge: dropping malformed message on %s: %v", msg.Channel, err)
				continue
			}
			if bm.Origin == b.id {
				continue
			}
			b.hub.deliverRemote(bm.Event.DocumentID, bm.Event)
		}
	}
}
