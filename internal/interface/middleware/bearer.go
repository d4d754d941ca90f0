package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is case-insensitive. Anything else yields "".
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
