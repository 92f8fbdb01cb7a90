package collab

import (
	"sync"
	"time"

	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/metrics"
)

// Hub is the session registry and broadcast relay. It tracks which users
// are present in which document room and fans events out to room peers.
// Presence is keyed by userID: a second tab of the same user joins the
// same membership entry and keeps presence alive until the last
// connection leaves. Rooms with no members are discarded.
//
// All state is guarded by a single mutex; broadcasts never block on a
// slow consumer (the per-client send buffer drops when full).
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]map[string]*Client // docID -> userID -> connID

	// optional cross-instance publisher (Redis bridge); nil when the
	// server runs standalone
	publish func(docID string, ev Event)
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]map[string]*Client)}
}

// SetPublisher installs the hook invoked for every broadcast so a bridge
// can relay events to other server instances.
func (h *Hub) SetPublisher(fn func(docID string, ev Event)) {
	h.mu.Lock()
	h.publish = fn
	h.mu.Unlock()
}

// Join adds c to the document's room and returns the member user set
// (including the joining user). Other members are notified with a
// user-joined event when this is the user's first connection to the room.
func (h *Hub) Join(docID string, c *Client) []string {
	h.mu.Lock()
	room, ok := h.rooms[docID]
	if !ok {
		room = make(map[string]map[string]*Client)
		h.rooms[docID] = room
		metrics.ActiveRooms.Inc()
	}
	conns, present := room[c.UserID]
	if !present {
		conns = make(map[string]*Client)
		room[c.UserID] = conns
	}
	conns[c.ID] = c

	users := make([]string, 0, len(room))
	for uid := range room {
		users = append(users, uid)
	}
	h.mu.Unlock()

	if !present {
		h.broadcast(docID, Event{Type: EventUserJoined, DocumentID: docID, UserID: c.UserID}, c.ID)
	}
	return users
}

// Leave removes c from the document's room. Remaining members get a
// user-left event once the user's last connection is gone; an emptied
// room is deleted outright.
func (h *Hub) Leave(docID string, c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[docID]
	if !ok {
		h.mu.Unlock()
		return
	}
	conns, ok := room[c.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(conns, c.ID)
	userGone := len(conns) == 0
	if userGone {
		delete(room, c.UserID)
	}
	if len(room) == 0 {
		delete(h.rooms, docID)
		metrics.ActiveRooms.Dec()
	}
	h.mu.Unlock()

	if userGone {
		h.broadcast(docID, Event{Type: EventUserLeft, DocumentID: docID, UserID: c.UserID}, c.ID)
	}
}

// DisconnectClient removes c from every room it joined and returns the
// affected document IDs.
func (h *Hub) DisconnectClient(c *Client) []string {
	h.mu.Lock()
	var docs []string
	for docID, room := range h.rooms {
		if conns, ok := room[c.UserID]; ok {
			if _, ok := conns[c.ID]; ok {
				docs = append(docs, docID)
			}
		}
	}
	h.mu.Unlock()
	for _, docID := range docs {
		h.Leave(docID, c)
	}
	return docs
}

// Members returns the user set of a room, or nil when the room does not
// exist (empty rooms never linger).
func (h *Hub) Members(docID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[docID]
	if !ok {
		return nil
	}
	users := make([]string, 0, len(room))
	for uid := range room {
		users = append(users, uid)
	}
	return users
}

// BroadcastEdit relays an edit to every other member of the room,
// carrying the author, cursor position and a server-assigned timestamp.
// This is unconditional and immediate: it does not wait on persistence.
func (h *Hub) BroadcastEdit(docID string, from *Client, content string, cursor *int) {
	ev := Event{
		Type:           EventDocumentUpdate,
		DocumentID:     docID,
		UserID:         from.UserID,
		Content:        content,
		CursorPosition: cursor,
		Timestamp:      time.Now().UTC(),
	}
	metrics.EditsBroadcast.Inc()
	h.broadcast(docID, ev, from.ID)
	h.relay(docID, ev)
}

// BroadcastCursor relays a cursor-only update, excluding the sender.
func (h *Hub) BroadcastCursor(docID string, from *Client, position *int) {
	ev := Event{
		Type:           EventCursorUpdate,
		DocumentID:     docID,
		UserID:         from.UserID,
		CursorPosition: position,
		Timestamp:      time.Now().UTC(),
	}
	h.broadcast(docID, ev, from.ID)
	h.relay(docID, ev)
}

// BroadcastSaved notifies the whole room, saver included, that a durable
// save completed.
func (h *Hub) BroadcastSaved(docID string, ts time.Time, versionCount int) {
	ev := Event{
		Type:         EventDocumentSaved,
		DocumentID:   docID,
		VersionCount: &versionCount,
		Timestamp:    ts,
	}
	h.broadcast(docID, ev, "")
	h.relay(docID, ev)
}

// broadcast fans ev out to every connection in the room except
// exceptConnID (empty string excludes nothing).
func (h *Hub) broadcast(docID string, ev Event, exceptConnID string) {
	h.mu.Lock()
	room := h.rooms[docID]
	targets := make([]*Client, 0, len(room))
	for _, conns := range room {
		for id, c := range conns {
			if id == exceptConnID {
				continue
			}
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.enqueue(ev)
	}
}

// deliverRemote pushes an event received from another instance to local
// room members. The originating user is skipped for edit and cursor
// events so a multi-tab user never sees their own input echoed back.
func (h *Hub) deliverRemote(docID string, ev Event) {
	h.mu.Lock()
	room := h.rooms[docID]
	targets := make([]*Client, 0, len(room))
	for uid, conns := range room {
		if uid == ev.UserID && (ev.Type == EventDocumentUpdate || ev.Type == EventCursorUpdate) {
			continue
		}
		for _, c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.enqueue(ev)
	}
}

func (h *Hub) relay(docID string, ev Event) {
	h.mu.Lock()
	fn := h.publish
	h.mu.Unlock()
	if fn == nil {
		return
	}
	fn(docID, ev)
}

// enqueue delivers ev to the client's send buffer without blocking.
func (c *Client) enqueue(ev Event) {
	select {
	case c.send <- ev:
	default:
		logger.Warnf("dropping %s event for slow client %s (user %s)", ev.Type, c.ID, c.UserID)
	}
}
