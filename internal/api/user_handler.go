package api

import (
	"net/http"

	"PenaltyHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler 用户资料与统计接口
type UserHandler struct {
	userService *service.UserService
	logger      *logrus.Logger
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userService *service.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetProfile 用户资料
// GET /users/:uid
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, h.logger, "GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile 部分更新资料（PUT 与 PATCH 语义相同）
// PUT /users/:uid
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), c.Param("uid"), &req)
	if err != nil {
		writeError(c, h.logger, "UpdateProfile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetStats 用户统计
// GET /users/:uid/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.GetStats(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, h.logger, "GetStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordResult 记录一场比赛结果
// POST /users/:uid/results
func (h *UserHandler) RecordResult(c *gin.Context) {
	var req service.RecordResultRequest
	if !bindJSON(c, &req) {
		return
	}
	stats, err := h.userService.RecordMatchResult(c.Request.Context(), c.Param("uid"), &req)
	if err != nil {
		writeError(c, h.logger, "RecordMatchResult", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UploadAvatar multipart 表单字段 file
// POST /users/:uid/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	user, err := h.userService.UploadAvatar(c.Request.Context(), c.Param("uid"), fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		writeError(c, h.logger, "UploadAvatar", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
