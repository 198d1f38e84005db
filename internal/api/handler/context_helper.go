package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// MustGetUserID reads the user_id injected by JWTAuth.
// On failure it writes a 401 and returns false; the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetActor resolves the authenticated caller with its capabilities.
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role := c.GetString("role")
	if role == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return service.Actor{}, false
	}
	return service.NewActor(userID, model.Role(role), c.GetString("department")), true
}

// tokenInfo returns the JWT ID and expiry of the current token, if any.
func tokenInfo(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return c.GetString("token_jti"), t
}
