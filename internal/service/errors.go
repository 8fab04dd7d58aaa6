package service

// ==================== 错误分类 ====================

// Error 业务错误分类
// InvalidState / Validation 属调用方错误，不重试；ExternalService 由调用方决定重试
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotFound        Error = "not found"
	ErrUnauthorized    Error = "unauthorized"
	ErrInvalidState    Error = "invalid state"
	ErrExternalService Error = "external service failure"
	ErrValidation      Error = "validation error"
)
