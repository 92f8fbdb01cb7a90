package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashjaiswal5859/Doc-Collab/internal/config"
	"github.com/yashjaiswal5859/Doc-Collab/internal/models"
	"github.com/yashjaiswal5859/Doc-Collab/internal/sessions"
	"github.com/yashjaiswal5859/Doc-Collab/internal/tokens"
	"github.com/yashjaiswal5859/Doc-Collab/internal/users"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/middleware"
)

// AuthHandler serves registration and login, issuing the JWT every other
// route (HTTP and websocket) authenticates with. When a session service is
// configured it also issues refresh tokens and serves refresh/logout.
type AuthHandler struct {
	cfg        *config.Config
	userSvc    *users.Service
	sessionSvc *sessions.Service
}

// NewAuthHandler creates the handler. sessionSvc may be nil, which disables
// refresh tokens entirely.
func NewAuthHandler(cfg *config.Config, userSvc *users.Service, sessionSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, userSvc: userSvc, sessionSvc: sessionSvc}
}

func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/api/auth/register", h.register)
	rg.POST("/api/auth/login", h.login)
	if h.sessionSvc != nil {
		rg.POST("/api/auth/refresh", h.refresh)
		rg.POST("/api/auth/logout", h.logout)
	}
}

// RegisterMe adds the authenticated profile route.
func (h *AuthHandler) RegisterMe(rg *gin.RouterGroup, ver middleware.Verifier) {
	rg.GET("/api/auth/me", middleware.AuthMiddleware(ver), h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userSvc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	h.respondWithTokens(c, http.StatusCreated, u)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.respondWithTokens(c, http.StatusOK, u)
}

// refresh exchanges a valid refresh token for a fresh access token,
// rotating the refresh token in the process.
func (h *AuthHandler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	u, err := h.userSvc.GetByID(c.Request.Context(), sess.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	if err := h.sessionSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	h.respondWithTokens(c, http.StatusOK, u)
}

func (h *AuthHandler) logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessionSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) me(c *gin.Context) {
	u, err := h.userSvc.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, u *models.User) {
	token, err := tokens.GenerateAccessToken(h.cfg.JWT.Secret, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	resp := gin.H{"token": token, "user": u}
	if h.sessionSvc != nil {
		refresh, err := h.sessionSvc.CreateSession(c.Request.Context(), u.ID, h.cfg.JWT.RefreshTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		resp["refreshToken"] = refresh
	}
	c.JSON(status, resp)
}
