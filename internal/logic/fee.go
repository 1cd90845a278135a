package logic

import (
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/model"
)

// FeePolicy 费用策略，纯函数集合，无状态
// 三个常量来自配置注入：维护费百分比、每笔贡献固定费、每笔提现固定费
type FeePolicy struct {
	maintenancePercent model.Money
	perDonation        model.Money
	withdrawalFixed    model.Money
}

// NewFeePolicy 从配置构造费用策略
func NewFeePolicy(cfg config.FeeConfig) *FeePolicy {
	return &FeePolicy{
		maintenancePercent: model.MoneyFromFloat(cfg.MaintenancePercent),
		perDonation:        model.MoneyFromFloat(cfg.PerDonation).Round2(),
		withdrawalFixed:    model.MoneyFromFloat(cfg.WithdrawalFixed).Round2(),
	}
}

// MaintenanceFee 维护费 = round(毛额 * 百分比 / 100)，负数归零
func (p *FeePolicy) MaintenanceFee(grossTotal model.Money) model.Money {
	hundred := model.MustMoney("100")
	return grossTotal.Mul(p.maintenancePercent).Div(hundred).Round2().FloorZero()
}

// PerContributionFeeTotal 按笔贡献固定费合计
func (p *FeePolicy) PerContributionFeeTotal(paidCount int64) model.Money {
	return p.perDonation.MulInt(paidCount).Round2().FloorZero()
}

// PerWithdrawalFeeTotal 按笔提现固定费合计（计非FAILED提现）
func (p *FeePolicy) PerWithdrawalFeeTotal(nonFailedCount int64) model.Money {
	return p.withdrawalFixed.MulInt(nonFailedCount).Round2().FloorZero()
}

// MaintenancePercent 维护费百分比，报表展示用
func (p *FeePolicy) MaintenancePercent() float64 {
	return p.maintenancePercent.Float64()
}

// PerDonationFee 每笔贡献固定费
func (p *FeePolicy) PerDonationFee() model.Money {
	return p.perDonation
}

// WithdrawalFixedFee 每笔提现固定费
func (p *FeePolicy) WithdrawalFixedFee() model.Money {
	return p.withdrawalFixed
}
