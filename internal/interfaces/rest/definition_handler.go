package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/internal/application/services"
	"github.com/schemabase/backend/pkg/constants"
)

// DefinitionHandler exposes the registry CRUD surface for collections,
// functions and RBAC bundles. Every mutation runs through the validation
// engine; a rejected definition yields 422 with the full report.
type DefinitionHandler struct {
	registry *services.RegistryService
}

// NewDefinitionHandler creates a new DefinitionHandler
func NewDefinitionHandler(registry *services.RegistryService) *DefinitionHandler {
	return &DefinitionHandler{registry: registry}
}

// CreateCollection registers a new collection definition
// POST /api/collections
func (h *DefinitionHandler) CreateCollection(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.CreateCollection(c.Request.Context(), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": def})
}

// ListCollections returns every registered collection definition
// GET /api/collections
func (h *DefinitionHandler) ListCollections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.ResponseItems: h.registry.ListCollections()})
}

// GetCollection returns one collection definition
// GET /api/collections/:name
func (h *DefinitionHandler) GetCollection(c *gin.Context) {
	HandleGetEnvelope(c, "collection", func() (interface{}, error) {
		return h.registry.GetCollection(c.Param("name"))
	})
}

// UpdateCollection replaces a collection definition
// PUT /api/collections/:name
func (h *DefinitionHandler) UpdateCollection(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.UpdateCollection(c.Request.Context(), c.Param("name"), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": def})
}

// DeleteCollection removes a collection definition
// DELETE /api/collections/:name
func (h *DefinitionHandler) DeleteCollection(c *gin.Context) {
	if err := h.registry.DeleteCollection(c.Request.Context(), c.Param("name")); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseMessage: "collection definition deleted"})
}

// GetCollectionSchema returns the projected whole-document schema
// GET /api/collections/:name/schema
func (h *DefinitionHandler) GetCollectionSchema(c *gin.Context) {
	HandleGetEnvelope(c, constants.ResponseSchema, func() (interface{}, error) {
		return h.registry.GenerateSchema(c.Param("name"))
	})
}

// ValidateCollectionData validates an instance document against a
// registered collection's projected schema
// POST /api/collections/:name/validate-data
func (h *DefinitionHandler) ValidateCollectionData(c *gin.Context) {
	var data map[string]interface{}
	if !BindJSON(c, &data) {
		return
	}
	result, err := h.registry.ValidateDocument(c.Param("name"), data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseReport: result})
}

// CreateFunction registers a new function definition
// POST /api/functions
func (h *DefinitionHandler) CreateFunction(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.CreateFunction(c.Request.Context(), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"function": def})
}

// ListFunctions returns every registered function definition
// GET /api/functions
func (h *DefinitionHandler) ListFunctions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.ResponseItems: h.registry.ListFunctions()})
}

// GetFunction returns one function definition
// GET /api/functions/:name
func (h *DefinitionHandler) GetFunction(c *gin.Context) {
	HandleGetEnvelope(c, "function", func() (interface{}, error) {
		return h.registry.GetFunction(c.Param("name"))
	})
}

// UpdateFunction replaces a function definition
// PUT /api/functions/:name
func (h *DefinitionHandler) UpdateFunction(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.UpdateFunction(c.Request.Context(), c.Param("name"), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"function": def})
}

// DeleteFunction removes a function definition
// DELETE /api/functions/:name
func (h *DefinitionHandler) DeleteFunction(c *gin.Context) {
	if err := h.registry.DeleteFunction(c.Request.Context(), c.Param("name")); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseMessage: "function definition deleted"})
}

// CreateRBACBundle registers a new RBAC definition
// POST /api/rbac
func (h *DefinitionHandler) CreateRBACBundle(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.CreateRBACBundle(c.Request.Context(), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rbac": def})
}

// ListRBACBundles returns every registered RBAC definition
// GET /api/rbac
func (h *DefinitionHandler) ListRBACBundles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.ResponseItems: h.registry.ListRBACBundles()})
}

// GetRBACBundle returns one RBAC definition
// GET /api/rbac/:name
func (h *DefinitionHandler) GetRBACBundle(c *gin.Context) {
	HandleGetEnvelope(c, "rbac", func() (interface{}, error) {
		return h.registry.GetRBACBundle(c.Param("name"))
	})
}

// UpdateRBACBundle replaces an RBAC definition
// PUT /api/rbac/:name
func (h *DefinitionHandler) UpdateRBACBundle(c *gin.Context) {
	var value map[string]interface{}
	if !BindJSON(c, &value) {
		return
	}
	def, err := h.registry.UpdateRBACBundle(c.Request.Context(), c.Param("name"), value)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rbac": def})
}

// DeleteRBACBundle removes an RBAC definition
// DELETE /api/rbac/:name
func (h *DefinitionHandler) DeleteRBACBundle(c *gin.Context) {
	if err := h.registry.DeleteRBACBundle(c.Request.Context(), c.Param("name")); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.ResponseMessage: "rbac definition deleted"})
}
