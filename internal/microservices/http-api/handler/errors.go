package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookhub/internal/logger"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 5 * time.Second

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func statusFor(kind shared.Kind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusConflict
	case shared.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error to its status code. Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	var appErr *shared.Error
	if !errors.As(err, &appErr) || appErr.Kind == shared.KindInternal {
		logger.Log.Errorw("request failed",
			"request_id", c.GetString(middleware.RequestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(statusFor(appErr.Kind), ErrorResponse{Error: appErr.Message, Details: appErr.Details})
}

// respondBindError turns a gin binding failure into a 400 listing the offending fields
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: details})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: []string{err.Error()}})
}

// currentUserID reads the user set by middleware.AuthMiddleware
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user not authenticated"})
		return "", false
	}
	return userID, true
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
