package api

import (
	"net/http"

	"PenaltyHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 注册与登录接口
type AuthHandler struct {
	userService *service.UserService
	logger      *logrus.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(userService *service.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

// RegisterEmail 邮箱注册，tag 可选
// POST /auth/register/email
func (h *AuthHandler) RegisterEmail(c *gin.Context) {
	var req service.RegisterByEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.RegisterByEmail(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, "RegisterByEmail", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterNickname 昵称注册
// POST /auth/register/nickname
func (h *AuthHandler) RegisterNickname(c *gin.Context) {
	var req service.RegisterByNicknameRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.RegisterByNickname(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, "RegisterByNickname", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginEmail 邮箱登录
// POST /auth/login/email
func (h *AuthHandler) LoginEmail(c *gin.Context) {
	var req service.LoginByEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.LoginByEmail(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, "LoginByEmail", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginNickname 昵称+标签登录
// POST /auth/login/nickname
func (h *AuthHandler) LoginNickname(c *gin.Context) {
	var req service.LoginByNicknameRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.LoginByNickname(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, "LoginByNickname", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
