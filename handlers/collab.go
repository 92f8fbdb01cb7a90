package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yashjaiswal5859/Doc-Collab/internal/collab"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/service"
	"github.com/yashjaiswal5859/Doc-Collab/internal/tokens"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// cross-origin editors are expected; auth happens via token, not origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CollabHandler upgrades authenticated connections into collaboration
// clients. The token rides in ?token= (browsers cannot set headers on a
// websocket upgrade) or in a Bearer header.
type CollabHandler struct {
	verifier   *tokens.Verifier
	hub        *collab.Hub
	sched      *collab.Scheduler
	docs       *service.Service
	accessOpen bool
}

func NewCollabHandler(verifier *tokens.Verifier, hub *collab.Hub, sched *collab.Scheduler, docs *service.Service, accessOpen bool) *CollabHandler {
	return &CollabHandler{verifier: verifier, hub: hub, sched: sched, docs: docs, accessOpen: accessOpen}
}

func (h *CollabHandler) Register(r *gin.Engine) {
	r.GET("/ws", h.serve)
}

func (h *CollabHandler) serve(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			raw = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.verifier.Subject(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	client := collab.NewClient(conn, userID, h.hub, h.sched, h.docs, h.accessOpen)
	logger.Debugf("collab connection %s opened for user %s", client.ID, userID)
	go client.Run()
}
