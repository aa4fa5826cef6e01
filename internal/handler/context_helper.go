package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/availability-api/internal/middleware"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
	"github.com/noah-isme/availability-api/pkg/response"
)

// currentUserID returns the authenticated respondent. It writes a 401 and
// reports false when the request carries no claims.
func currentUserID(c *gin.Context) (string, bool) {
	value, _ := c.Get(middleware.ContextUserKey)
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
