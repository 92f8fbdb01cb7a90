package collab

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeRelaysBetweenInstances(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	clientA := redis.NewClient(&redis.Options{Addr: m.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: m.Addr()})

	hubA := NewHub()
	hubB := NewHub()
	bridgeA := NewBridge(clientA, hubA)
	bridgeB := NewBridge(clientB, hubB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridgeA.Run(ctx)
	go bridgeB.Run(ctx)

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hubA.Join("d1", alice)
	hubB.Join("d1", bob)
	drain(alice)
	drain(bob)

	// give the pattern subscriptions a moment to land
	time.Sleep(50 * time.Millisecond)

	pos := 2
	hubA.BroadcastEdit("d1", alice, "hello from A", &pos)

	require.Eventually(t, func() bool {
		select {
		case ev := <-bob.send:
			return ev.Type == EventDocumentUpdate && ev.Content == "hello from A" && ev.UserID == "alice"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// the originating instance does not re-deliver its own publication
	assert.Empty(t, drain(alice))
}

func TestBridgeSkipsOriginatingUserOnRemoteEdits(t *testing.T) {
	h := NewHub()
	aliceTab := newTestClient("alice")
	bob := newTestClient("bob")
	h.Join("d1", aliceTab)
	h.Join("d1", bob)
	drain(aliceTab)
	drain(bob)

	// an edit by alice arriving from another instance reaches bob only
	h.deliverRemote("d1", Event{Type: EventDocumentUpdate, DocumentID: "d1", UserID: "alice", Content: "remote"})
	assert.Empty(t, drain(aliceTab))
	evs := drain(bob)
	require.Len(t, evs, 1)
	assert.Equal(t, "remote", evs[0].Content)

	// saved events reach everyone
	n := 1
	h.deliverRemote("d1", Event{Type: EventDocumentSaved, DocumentID: "d1", UserID: "alice", VersionCount: &n})
	require.Len(t, drain(aliceTab), 1)
	require.Len(t, drain(bob), 1)
}
