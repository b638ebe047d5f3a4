package httpserver

import (
	"errors"
	"log"
	"net/http"

	"merchant-client/internal/domain"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	ErrorID string `json:"errorId"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, errorID, message string) {
	c.AbortWithStatusJSON(status, errorBody{ErrorID: errorID, Message: message})
}

// writeError maps a service error onto the API's error envelope.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status, errorID := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, errorID = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		status, errorID = http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrUnauthorized):
		status, errorID = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidAmount):
		status, errorID = http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, domain.ErrInvalidState):
		status, errorID = http.StatusUnprocessableEntity, "invalid_order_state"
	case errors.Is(err, domain.ErrInvalidInput):
		status, errorID = http.StatusBadRequest, "invalid_request"
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}
	abortWithError(c, status, errorID, message)
}

func badRequest(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
}
