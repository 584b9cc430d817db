// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/medassist/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and writes the
// standard error body. Internal details are masked.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)

	message := err.Error()
	if status >= 500 {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Message: message})
}

// parseUserID reads and validates the user id path parameter.
func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "invalid user id"))
		return uuid.Nil, false
	}
	return id, true
}

// parseID reads and validates the resource id path parameter.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
