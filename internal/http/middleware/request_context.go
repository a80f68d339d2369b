package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/ctxutil"
)

// headerUserID is set by the auth gateway in front of this service.
const headerUserID = "X-User-Id"

// AttachRequestContext resolves the caller from X-User-Id. A missing or malformed
// header makes the request anonymous; it is never rejected here.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uuid.Nil
		if raw := strings.TrimSpace(c.GetHeader(headerUserID)); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				userID = id
			}
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
