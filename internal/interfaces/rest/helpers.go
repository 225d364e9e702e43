package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/pkg/auth"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/errors"
)

// GetSessionFromContext extracts the authenticated operator session
func GetSessionFromContext(c *gin.Context) *auth.Session {
	sessionInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	session := sessionInterface.(auth.Session)
	return &session
}

// RespondAppError sends a standardised JSON error response using pkg/errors.
// Rejected definitions additionally carry the full validation report.
func RespondAppError(c *gin.Context, err error) {
	status := errors.GetHTTPStatus(err)
	message := err.Error()

	if status >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", status, c.Request.Method, c.Request.URL.Path, message)
	}

	body := gin.H{
		constants.ResponseError:   message,
		constants.ResponseMessage: message,
		"code":                    errors.GetErrorCode(err),
	}

	if rejected, ok := errors.AsDefinitionRejected(err); ok {
		body[constants.ResponseReport] = rejected.Report
	}

	c.JSON(status, body)
}

// BindJSON binds the request body and responds with a bad request on failure
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// HandleGetEnvelope executes a read action and wraps the result in a JSON key
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}
