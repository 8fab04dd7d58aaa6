package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== 外部协作方接口 ====================

// PaymentGateway 支付网关
// Refund 必须按 reference 幂等：订单状态是退款是否发生的唯一事实，网关侧重复调用应为空操作
type PaymentGateway interface {
	Refund(ctx context.Context, paymentRef string) error
}

// Notifier 用户通知
// 全部 fire-and-forget：失败只记日志，绝不回滚触发它的状态迁移
type Notifier interface {
	NotifyOrderQueued(ctx context.Context, contact string, orderID, amount int64)
	NotifyOrderReady(ctx context.Context, contact string, orderID int64, shopName string)
	NotifyRefund(ctx context.Context, contact string, orderID, amount int64, reason string)
}

// FileStore 文件存储
// 核心只持有不透明引用，不读文件内容
type FileStore interface {
	Store(ctx context.Context, data []byte, name string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// DocumentInspector 文档检测
// 返回源文档页数；失败时调用方按 1 页兜底（少计费优于卡单）
type DocumentInspector interface {
	PageCount(data []byte, mimeType string) (int, error)
}

// ==================== 默认实现 ====================

// LogNotifier 日志通知器
// 邮件/短信通道由外部系统承接，这里只负责结构化落日志
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOrderQueued(_ context.Context, contact string, orderID, amount int64) {
	n.log.Infow("notify order queued", "contact", contact, "order_id", orderID, "amount", amount)
}

func (n *LogNotifier) NotifyOrderReady(_ context.Context, contact string, orderID int64, shopName string) {
	n.log.Infow("notify order ready", "contact", contact, "order_id", orderID, "shop", shopName)
}

func (n *LogNotifier) NotifyRefund(_ context.Context, contact string, orderID, amount int64, reason string) {
	n.log.Infow("notify refund", "contact", contact, "order_id", orderID, "amount", amount, "reason", reason)
}

// HeuristicInspector 启发式页数检测
// PDF 数对象表里的页对象，其余类型一律按 1 页
// 检测只影响计价，打印端以实际文档为准
type HeuristicInspector struct{}

func (HeuristicInspector) PageCount(data []byte, mimeType string) (int, error) {
	if mimeType != "application/pdf" {
		return 1, nil
	}
	pages := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	if pages <= 0 {
		pages = bytes.Count(data, []byte("/Type/Page")) - bytes.Count(data, []byte("/Type/Pages"))
	}
	if pages <= 0 {
		return 0, fmt.Errorf("无法解析 PDF 页数")
	}
	return pages, nil
}

// NoopFileStore 占位文件存储
// 真实部署挂 Blob 存储网关；引用为随机生成的不透明串
type NoopFileStore struct{}

func (NoopFileStore) Store(_ context.Context, _ []byte, _ string) (string, error) {
	return uuid.NewString(), nil
}

func (NoopFileStore) Delete(_ context.Context, _ string) error {
	return nil
}
