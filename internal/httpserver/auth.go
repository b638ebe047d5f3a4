package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"merchant-client/internal/domain"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const merchantCtxKey ctxKey = "merchantID"

// merchantMiddleware authenticates the bearer API key and stores the
// owning merchant id in the request context.
func merchantMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearerToken(c.GetHeader("Authorization"))
		if key == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "missing bearer API key")
			return
		}
		merchantID, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to authenticate")
			return
		}
		ctx := context.WithValue(c.Request.Context(), merchantCtxKey, merchantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func merchantID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(merchantCtxKey).(string)
	return id
}
