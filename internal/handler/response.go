package handler

import (
	"net/http"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWithError 按错误分类映射HTTP状态并带上数值上下文
func FailWithError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if e, ok := err.(*apperr.Error); ok {
		appErr = e
	} else {
		logger.Error("Internal error: %v", err)
		appErr = apperr.New(apperr.KindInternal, "内部错误")
	}

	c.JSON(statusForKind(appErr), Response{
		Success: false,
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Data:    appErr.Context,
	})
}

// statusForKind 错误分类到HTTP状态码
func statusForKind(e *apperr.Error) int {
	switch e.Kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case apperr.KindSignature:
		return http.StatusUnauthorized
	case apperr.KindTokenExpired, apperr.KindTokenExhausted:
		return http.StatusGone
	case apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindGateway:
		if e.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// currentUserId 显式的所有者身份，认证在账务核心之外完成
func currentUserId(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		ErrorResponse(c, http.StatusUnauthorized, "缺少 X-User-Id 头")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "X-User-Id 不是合法的UUID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUserId 可选身份（匿名贡献允许）
func optionalUserId(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
