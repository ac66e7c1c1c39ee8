package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"auth-service/internal/domain"
	"auth-service/internal/metrics"
	"auth-service/internal/service"
	"auth-service/internal/token"
)

// Handler wires HTTP routes to the auth use cases and the token service.
type Handler struct {
	auth    service.AuthService
	tokens  *token.Service
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

func NewHandler(auth service.AuthService, tokens *token.Service, m *metrics.Metrics, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:    auth,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(h.metrics.Middleware())

	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.health)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refresh)
		}

		guarded := api.Group("", RequireAuth(h.tokens))
		{
			guarded.GET("/auth/profile", h.getProfile)
			guarded.PUT("/auth/profile", h.updateProfile)
			guarded.PUT("/auth/password", h.changePassword)
			guarded.GET("/auth/verify", h.verify)
			guarded.GET("/users", h.listUsers)
			guarded.DELETE("/users/:id", h.deleteUser)
		}
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// userResponse is the identity block embedded in auth responses.
type userResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type authResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordAuthOperation("register", "failure")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := domain.RoleUser
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			h.metrics.RecordAuthOperation("register", "failure")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
		role = parsed
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		h.metrics.RecordAuthOperation("register", "failure")
		h.writeError(c, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		h.metrics.RecordAuthOperation("register", "failure")
		h.writeError(c, err)
		return
	}

	h.metrics.RecordAuthOperation("register", "success")
	c.JSON(http.StatusCreated, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordAuthOperation("login", "failure")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.RecordAuthOperation("login", "failure")
		h.writeError(c, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		h.metrics.RecordAuthOperation("login", "failure")
		h.writeError(c, err)
		return
	}

	h.metrics.RecordAuthOperation("login", "success")
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserResponse(user),
	})
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordAuthOperation("refresh", "failure")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	access, err := h.tokens.RefreshAccess(req.RefreshToken)
	if err != nil {
		h.metrics.RecordAuthOperation("refresh", "failure")
		h.writeError(c, err)
		return
	}

	h.metrics.RecordAuthOperation("refresh", "success")
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (h *Handler) getProfile(c *gin.Context) {
	claims, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return
	}

	user, err := h.auth.GetProfile(c.Request.Context(), claims.Subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) updateProfile(c *gin.Context) {
	claims, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), claims.Subject, req.Username, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) changePassword(c *gin.Context) {
	claims, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// verify lets other services confirm a token without sharing the secret.
func (h *Handler) verify(c *gin.Context) {
	claims, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": claims})
}

func (h *Handler) listUsers(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	profiles := make([]domain.Profile, len(users))
	for i, user := range users {
		profiles[i] = user.Profile()
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id := c.Param("id")
	if err := h.auth.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "auth-service",
	})
}

// requireAdmin layers the role check on top of the principal the guard
// attached. The guard itself stays role-agnostic.
func (h *Handler) requireAdmin(c *gin.Context) bool {
	claims, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return false
	}
	if claims.Role != string(domain.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return false
	}
	return true
}

// writeError maps core errors onto HTTP status codes. Everything unexpected
// is a 500 with the detail kept in the log, not the response.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, token.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}
