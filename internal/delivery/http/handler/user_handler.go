package handler

import (
	"product-catalog/internal/middleware"
	"product-catalog/internal/usecase/user"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes mounts the credential routes behind the given limiter.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	credentials := router.Group("", limit)
	{
		credentials.POST("/login", h.Login)
		credentials.POST("/registration", h.Register)
		credentials.POST("/signup", h.Register)
		credentials.POST("/forget-password", h.ForgotPassword)
		credentials.POST("/reset-password", h.ResetPassword)
	}
}

func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.Me)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bind(c, &req) {
		return
	}

	utils.Respond(c, h.service.Login(c.Request.Context(), &req))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bind(c, &req) {
		return
	}

	utils.Respond(c, h.service.Register(c.Request.Context(), &req))
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}

	utils.Respond(c, h.service.ForgotPassword(c.Request.Context(), &req))
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if !bind(c, &req) {
		return
	}

	utils.Respond(c, h.service.ResetPassword(c.Request.Context(), &req))
}

func (h *UserHandler) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	utils.Respond(c, h.service.Me(c.Request.Context(), id.UserID))
}

// RefreshToken expects the route to be mounted with middleware.AllowExpired.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}

	utils.Respond(c, h.service.RefreshToken(c.Request.Context(), middleware.GetToken(c)))
}
