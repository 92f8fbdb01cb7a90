package collab

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/service"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// Client is one authenticated socket connection. UserID comes from the
// verified token at upgrade time; ID identifies the connection so a user
// with several tabs holds several clients.
type Client struct {
	ID     string
	UserID string

	conn *websocket.Conn
	send chan Event
	done chan struct{}

	hub        *Hub
	sched      *Scheduler
	docs       *service.Service
	accessOpen bool

	// documents this connection has joined; touched only by the read
	// loop, so no lock is needed
	joined map[string]bool
}

func NewClient(conn *websocket.Conn, userID string, hub *Hub, sched *Scheduler, docs *service.Service, accessOpen bool) *Client {
	return &Client{
		ID:         uuid.NewString(),
		UserID:     userID,
		conn:       conn,
		send:       make(chan Event, sendBuffer),
		done:       make(chan struct{}),
		hub:        hub,
		sched:      sched,
		docs:       docs,
		accessOpen: accessOpen,
	}
}

// Run starts the write pump and then consumes inbound events until the
// connection closes, after which presence and pending saves for this
// user are cleaned up.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer c.disconnect()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("client %s read error: %v", c.ID, err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.enqueue(errorEvent("malformed event"))
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
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

func (c *Client) dispatch(ev Event) {
	switch ev.Type {
	case EventJoinDocument:
		c.handleJoin(ev)
	case EventLeaveDocument:
		c.handleLeave(ev)
	case EventDocumentChange:
		c.handleChange(ev)
	case EventCursorPosition:
		c.handleCursor(ev)
	case EventSaveDocument:
		c.handleSave(ev)
	default:
		c.enqueue(errorEvent("unknown event type: " + ev.Type))
	}
}

// handleJoin runs the access check once and records room membership. The
// reply carries the current member set; peers get user-joined.
func (c *Client) handleJoin(ev Event) {
	if ev.DocumentID == "" {
		c.enqueue(errorEvent("documentId is required"))
		return
	}
	d, err := c.docs.Get(context.Background(), ev.DocumentID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			c.enqueue(errorEvent("document not found"))
		} else {
			// fail closed on lookup errors
			c.enqueue(errorEvent("access check failed"))
		}
		return
	}
	if !c.accessOpen && !document.CanAccess(d, c.UserID) {
		c.enqueue(errorEvent("access denied"))
		return
	}
	if c.joined == nil {
		c.joined = make(map[string]bool)
	}
	c.joined[ev.DocumentID] = true
	users := c.hub.Join(ev.DocumentID, c)
	c.enqueue(Event{Type: EventActiveUsers, DocumentID: ev.DocumentID, Users: users})
}

// handleLeave drops room membership and abandons the pair's pending
// auto-save; leaving means the unsaved tail is not wanted.
func (c *Client) handleLeave(ev Event) {
	if !c.joined[ev.DocumentID] {
		return
	}
	delete(c.joined, ev.DocumentID)
	c.sched.Cancel(ev.DocumentID, c.UserID)
	c.hub.Leave(ev.DocumentID, c)
}

// handleChange broadcasts immediately and schedules a debounced durable
// write; the broadcast never waits on persistence.
func (c *Client) handleChange(ev Event) {
	if !c.joined[ev.DocumentID] {
		c.enqueue(errorEvent("join the document before editing"))
		return
	}
	c.hub.BroadcastEdit(ev.DocumentID, c, ev.Content, ev.CursorPosition)
	c.sched.OnEdit(ev.DocumentID, c.UserID, ev.Content)
}

func (c *Client) handleCursor(ev Event) {
	if !c.joined[ev.DocumentID] {
		return
	}
	c.hub.BroadcastCursor(ev.DocumentID, c, ev.CursorPosition)
}

// handleSave flushes any pending debounce and persists synchronously.
// Success is announced to the whole room; failure only to the saver.
func (c *Client) handleSave(ev Event) {
	if !c.joined[ev.DocumentID] {
		c.enqueue(errorEvent("join the document before saving"))
		return
	}
	count, err := c.sched.Flush(context.Background(), ev.DocumentID, c.UserID, ev.Content)
	if err != nil {
		logger.Errorf("explicit save failed for document %s (user %s): %v", ev.DocumentID, c.UserID, err)
		c.enqueue(errorEvent("save failed"))
		return
	}
	c.hub.BroadcastSaved(ev.DocumentID, time.Now().UTC(), count)
}

// disconnect is the implicit-leave path: pending saves for this user are
// cancelled and every joined room gets its user-left notification.
// Closing done stops the write pump; the send channel itself stays open,
// so a broadcast racing the teardown just lands in a buffer nobody
// drains instead of panicking on a closed channel.
func (c *Client) disconnect() {
	c.sched.CancelAll(c.UserID)
	c.hub.DisconnectClient(c)
	close(c.done)
	c.conn.Close()
}
