package service

import (
	"math"

	"printhub/internal/model"
)

// ==================== Pricing 计价 ====================

// RateTable 价格表（分/页）
// 零售价用于用户计价，结算价用于打印站分账
// 两套价格刻意不同，不能合并成一个字段
type RateTable struct {
	RetailBW      int64
	RetailColor   int64
	RetailBWA3    int64
	RetailColorA3 int64

	SettleBW    int64
	SettleColor int64

	ServiceChargeRatio float64
	MaxServiceCharge   int64
}

// RetailRate 按颜色与纸张取零售单价
func (t *RateTable) RetailRate(isColor bool, paperSize string) int64 {
	if paperSize == model.PaperSizeA3 {
		if isColor {
			return t.RetailColorA3
		}
		return t.RetailBWA3
	}
	if isColor {
		return t.RetailColor
	}
	return t.RetailBW
}

// FileCost 单个文件打印费 = 单价 * 页数 * 份数
func (t *RateTable) FileCost(pageCount, copies int, isColor bool, paperSize string) int64 {
	return t.RetailRate(isColor, paperSize) * int64(pageCount) * int64(copies)
}

// ServiceCharge 服务费 = ceil(min(打印费 * ratio, 上限))
func (t *RateTable) ServiceCharge(printCost int64) int64 {
	charge := int64(math.Ceil(float64(printCost) * t.ServiceChargeRatio))
	if charge > t.MaxServiceCharge {
		return t.MaxServiceCharge
	}
	return charge
}

// SettleAmount 结算金额 = 黑白页数*黑白结算价 + 彩色页数*彩色结算价
func (t *RateTable) SettleAmount(bwPages, colorPages int64) int64 {
	return bwPages*t.SettleBW + colorPages*t.SettleColor
}
