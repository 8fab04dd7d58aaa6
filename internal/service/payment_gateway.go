package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== RestyPaymentGateway ====================

// RestyPaymentGateway 支付网关 HTTP 客户端
type RestyPaymentGateway struct {
	client *resty.Client
}

// NewRestyPaymentGateway 创建支付网关客户端
func NewRestyPaymentGateway(baseURL string, timeout time.Duration) *RestyPaymentGateway {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	return &RestyPaymentGateway{client: client}
}

// Refund 发起退款
// 网关按 reference 幂等，重复提交同一笔退款返回成功
func (g *RestyPaymentGateway) Refund(ctx context.Context, paymentRef string) error {
	if paymentRef == "" {
		return fmt.Errorf("%w: 支付流水号为空", ErrValidation)
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"reference": paymentRef}).
		Post("/v1/refunds")
	if err != nil {
		return fmt.Errorf("%w: 退款请求失败: %v", ErrExternalService, err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: 网关返回 [%d]: %s", ErrExternalService, resp.StatusCode(), resp.String())
	}
	return nil
}
