package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/response"
)

// AuthHandler authentication and account endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, 11001, "invalid username or password")
		case errors.Is(err, service.ErrUserInactive):
			response.Forbidden(c, 11002, "account is disabled")
		default:
			respondError(c, err)
		}
		return
	}

	response.OK(c, result)
}

// Logout revokes the current token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenInfo(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, user)
}

// CreateUser admin only.
// POST /api/v1/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authSvc.CreateUser(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, user)
}

// ListUsers admin only.
// GET /api/v1/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}

	users, total, err := h.authSvc.ListUsers(c.Request.Context(), &page, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OKPage(c, users, total, page.GetPage(), page.GetPageSize())
}
