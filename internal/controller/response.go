package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/internal/service"
)

// ==================== 统一错误映射 ====================

// abortWithError 将业务错误映射为 HTTP 状态码
// InvalidState/Validation 不重试，直接回给调用方；
// 管理端需要看到外部服务的原始错误信息以便人工干预
func abortWithError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrExternalService):
		status = http.StatusBadGateway
	}

	ctx.JSON(status, gin.H{
		"code":  status,
		"error": err.Error(),
	})
}
