package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/internal/application/services"
	"github.com/schemabase/backend/pkg/constants"
)

// ValidationHandler exposes dry-run validation: definitions are checked
// and reported on, never persisted
type ValidationHandler struct {
	registry *services.RegistryService
}

// NewValidationHandler creates a new ValidationHandler
func NewValidationHandler(registry *services.RegistryService) *ValidationHandler {
	return &ValidationHandler{registry: registry}
}

// ValidateCollection validates a collection definition
// POST /api/validate/collection
func (h *ValidationHandler) ValidateCollection(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseReport: h.registry.ValidateCollection(value)})
}

// ValidateFunction validates a function definition
// POST /api/validate/function
func (h *ValidationHandler) ValidateFunction(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseReport: h.registry.ValidateFunction(value)})
}

// ValidateRBAC validates an RBAC definition
// POST /api/validate/rbac
func (h *ValidationHandler) ValidateRBAC(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseReport: h.registry.ValidateRBAC(value)})
}
