package model

import "github.com/google/uuid"

// BalanceReport 可提现余额报表
// 字段为审计对账契约的一部分，逐步按2位小数舍入后的结果
type BalanceReport struct {
	FundraiserId uuid.UUID `json:"fundraiser_id"`

	// 已支付贡献的毛额与笔数
	GrossPaid Money `json:"gross_paid"`
	PaidCount int64 `json:"paid_count"`

	// 维护费（百分比）与按笔固定费
	FeeMaintenancePercent float64 `json:"fee_maintenance_percent"`
	FeeMaintenanceAmount  Money   `json:"fee_maintenance_amount"`
	FeePerDonation        Money   `json:"fee_per_donation"`
	FeePerDonationTotal   Money   `json:"fee_per_donation_total"`

	// 扣除贡献侧费用后的净额，未计提现
	NetBeforeWithdrawals Money `json:"net_before_withdrawals"`

	// 非FAILED提现（PENDING/PROCESSING/COMPLETED）的总额、笔数与已计提现固定费
	WithdrawalsSumNonFailed   Money `json:"withdrawals_sum_non_failed"`
	WithdrawalsCountNonFailed int64 `json:"withdrawals_count_non_failed"`
	WithdrawFeeFixed          Money `json:"withdraw_fee_fixed"`
	WithdrawFeesTotalApplied  Money `json:"withdraw_fees_total_applied"`

	// 下一笔提现费扣除前的可用余额
	AvailableNetBeforeWithdrawFee Money `json:"available_net_before_withdraw_fee"`
	// 当前可申请的最大净额（再扣一笔提现固定费之后）
	MaxPayoutNowAfterWithdrawFee Money `json:"max_payout_now_after_withdraw_fee"`
}
