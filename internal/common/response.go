package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta additional metadata
type Meta struct {
	Total   int    `json:"total,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// CreatedResponse 201 with the standard envelope
func CreatedResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusCreated, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}
	if err != nil && gin.Mode() == gin.DebugMode {
		errInfo.Details = err.Error()
	}

	c.JSON(status, APIResponse{Error: errInfo})
}

// ErrorResponseWithDetails error response carrying structured details
func ErrorResponseWithDetails(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, APIResponse{Error: &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
		Details: details,
	}})
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 422:
		return "UNPROCESSABLE_ENTITY"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	case 503:
		return "SERVICE_UNAVAILABLE"
	default:
		return "ERROR"
	}
}
