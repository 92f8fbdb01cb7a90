package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/service"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/middleware"
)

// DocumentHandler serves the CRUD plumbing around the collaboration
// core: listing, creation, content patching, sharing, version browsing
// and revert. Every route requires an authenticated user; read/write
// routes additionally pass the owner/collaborator guard unless the open
// access mode is configured.
type DocumentHandler struct {
	svc        *service.Service
	accessOpen bool
}

func NewDocumentHandler(svc *service.Service, accessOpen bool) *DocumentHandler {
	return &DocumentHandler{svc: svc, accessOpen: accessOpen}
}

func (h *DocumentHandler) Register(r *gin.Engine, ver middleware.Verifier) {
	g := r.Group("/api/documents", middleware.AuthMiddleware(ver))
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/collaborators", h.addCollaborator)
	g.GET("/:id/versions", h.versions)
	g.POST("/:id/revert", h.revert)
}

func writeDocError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, document.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, document.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "version index out of range"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence failed"})
	}
}

// loadGuarded fetches the document and runs the access guard for the
// requesting user, failing closed on lookup errors.
func (h *DocumentHandler) loadGuarded(c *gin.Context, id string) (*document.Document, bool) {
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeDocError(c, err)
		return nil, false
	}
	if !h.accessOpen && !document.CanAccess(d, middleware.UserID(c)) {
		writeDocError(c, document.ErrAccessDenied)
		return nil, false
	}
	return d, true
}

func (h *DocumentHandler) list(c *gin.Context) {
	docs, err := h.svc.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeDocError(c, err)
		return
	}
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, gin.H{"id": d.ID, "title": d.Title, "versionCount": d.VersionCount, "updatedAt": d.UpdatedAt})
	}
	c.JSON(http.StatusOK, out)
}

func (h *DocumentHandler) create(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req.Title, req.Content)
	if err != nil {
		writeDocError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DocumentHandler) get(c *gin.Context) {
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

// update patches title and/or content. Content changes go through the
// same transactional path the auto-save uses, so history stays correct.
func (h *DocumentHandler) update(c *gin.Context) {
	var req struct {
		Title   *string `json:"title,omitempty"`
		Content *string `json:"content,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	var err error
	if req.Content != nil {
		d, _, err = h.svc.ApplyContentChange(c.Request.Context(), d.ID, *req.Content, middleware.UserID(c))
		if err != nil {
			writeDocError(c, err)
			return
		}
	}
	if req.Title != nil {
		d, err = h.svc.Rename(c.Request.Context(), d.ID, *req.Title)
		if err != nil {
			writeDocError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, d)
}

func (h *DocumentHandler) delete(c *gin.Context) {
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	// deletion is owner-only even in open mode
	if d.OwnerID != middleware.UserID(c) {
		writeDocError(c, document.ErrAccessDenied)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), d.ID); err != nil {
		writeDocError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) addCollaborator(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	if d.OwnerID != middleware.UserID(c) {
		writeDocError(c, document.ErrAccessDenied)
		return
	}
	if err := h.svc.AddCollaborator(c.Request.Context(), d.ID, req.UserID); err != nil {
		writeDocError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) versions(c *gin.Context) {
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	vs, err := h.svc.Versions(c.Request.Context(), d.ID)
	if err != nil {
		writeDocError(c, err)
		return
	}
	c.JSON(http.StatusOK, vs)
}

func (h *DocumentHandler) revert(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, ok := h.loadGuarded(c, c.Param("id"))
	if !ok {
		return
	}
	d, err := h.svc.Revert(c.Request.Context(), d.ID, *req.Index, middleware.UserID(c))
	if err != nil {
		writeDocError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
