package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/pkg/fieldtypes"
)

// FieldTypesHandler exposes the field type capability registry
type FieldTypesHandler struct {
	registry *fieldtypes.Registry
}

// NewFieldTypesHandler creates a new FieldTypesHandler
func NewFieldTypesHandler(registry *fieldtypes.Registry) *FieldTypesHandler {
	return &FieldTypesHandler{registry: registry}
}

// ListFieldTypes returns every registered field type with its capabilities
// GET /api/fieldtypes
func (h *FieldTypesHandler) ListFieldTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fieldTypes": h.registry.All()})
}
