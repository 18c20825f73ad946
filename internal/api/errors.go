package api

import (
	"errors"
	"net/http"

	"PenaltyHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor 服务层哨兵错误 → HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrTagAlreadyTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAvatarDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError 写错误响应。5xx 记 error 日志，其余记 warn
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	status := statusFor(err)
	entry := logger.WithError(err).WithField("op", op)
	if status >= http.StatusInternalServerError {
		entry.Error(op + " failed")
	} else {
		entry.Warn(op + " rejected")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON 解析请求体，失败时直接写 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}
