package logging

import "go.uber.org/zap"

// NewSugaredLogger 创建业务日志器
func NewSugaredLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("cannot initialize zap")
	}
	return logger.Sugar()
}

// NewNop 静默日志器，测试用
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
