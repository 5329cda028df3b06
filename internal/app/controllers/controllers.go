package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/deniz/alumlink/internal/app/models"
)

// callerParty builds the acting party from the context keys set by the JWT
// middleware. The second return is false when the middleware did not run.
func callerParty(ctx *gin.Context) (models.Party, bool) {
	userID, ok := ctx.Get("userID")
	if !ok {
		return models.Party{}, false
	}

	userIDInt, ok := userID.(int64)
	if !ok || userIDInt <= 0 {
		return models.Party{}, false
	}

	roleType, ok := ctx.Get("roleType")
	if !ok {
		return models.Party{}, false
	}

	roleStr, ok := roleType.(string)
	if !ok || roleStr == "" {
		return models.Party{}, false
	}

	return models.Party{
		Role:   models.RoleType(roleStr),
		UserID: userIDInt,
	}, true
}
