package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/internal/application/services"
)

// AuthHandler handles operator authentication
type AuthHandler struct {
	authSvc *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authSvc *services.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login issues a JWT for the admin credential
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSON(c, &req) {
		return
	}

	token, err := h.authSvc.Login(req.Name, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
