package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

// Envelope is the uniform contract for write and lookup operations.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	StatusCode *int        `json:"statusCode,omitempty"`
}

// JSON sends a success envelope with the given status.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusOK, data, message)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusCreated, data, message)
}

// Raw sends the payload without the envelope. List and dashboard endpoints
// return their paginated or report shape directly.
func Raw(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Error converts the error to the envelope with success=false.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	status := appErr.Status
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Success: false, Message: appErr.Message, StatusCode: &status})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
