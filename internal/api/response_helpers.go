// internal/api/response_helpers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/utils"
)

// APIResponse is the envelope every /api endpoint answers with. It is the
// server-side twin of models.Envelope.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ResponseHelper writes envelopes.
type ResponseHelper struct {
	logger *utils.Logger
}

// NewResponseHelper creates a response helper.
func NewResponseHelper(logger *utils.Logger) *ResponseHelper {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ResponseHelper{logger: logger}
}

// Success answers 200 with data.
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusOK, data, message)
}

// Created answers 201 with the created resource.
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusCreated, data, message)
}

func (rh *ResponseHelper) write(c *gin.Context, status int, data interface{}, message []string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// Error answers with success=false.
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string) {
	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     message,
		Code:      errorCode,
		Timestamp: time.Now().UTC(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest answers 400.
func (rh *ResponseHelper) BadRequest(c *gin.Context, code, message string) {
	rh.Error(c, http.StatusBadRequest, code, message)
}

// NotFound answers 404.
func (rh *ResponseHelper) NotFound(c *gin.Context, message string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message)
}

// FromError maps a service error onto status, code and message. Internal
// details (wrapped causes, file paths) stay in the log.
func (rh *ResponseHelper) FromError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.CodeOf(err)
	message := apperrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		rh.logger.Error("request failed", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": rh.getRequestID(c),
			"error":      err.Error(),
		})
		if code == "UNKNOWN_ERROR" {
			code = ErrorInternalError
			message = "an internal error occurred"
		}
	}
	rh.Error(c, status, code, message)
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
