package logic

import (
	"errors"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BalanceLogic 余额计算，只读，不改任何状态
// 必须与后续的提现决策跑在同一个事务/快照里，调用方传入事务句柄
type BalanceLogic struct {
	db  *gorm.DB
	fee *FeePolicy
}

// NewBalanceLogic 创建余额计算逻辑
func NewBalanceLogic(db *gorm.DB, fee *FeePolicy) *BalanceLogic {
	return &BalanceLogic{db: db, fee: fee}
}

// Report 计算指定募捐活动的费用/余额明细
// 每一步中间结果都按2位小数舍入，舍入顺序是审计对账契约的一部分
func (b *BalanceLogic) Report(tx *gorm.DB, fundraiserId uuid.UUID) (*model.BalanceReport, error) {
	if tx == nil {
		tx = b.db
	}

	gross, paidCount, err := b.paidContributionStats(tx, fundraiserId)
	if err != nil {
		return nil, err
	}

	feeMaintenance := b.fee.MaintenanceFee(gross)
	feePerDonationTotal := b.fee.PerContributionFeeTotal(paidCount)
	netBeforeWithdrawals := gross.Sub(feeMaintenance).Sub(feePerDonationTotal).Round2().FloorZero()

	withdrawn, withdrawnCount, err := b.nonFailedWithdrawalStats(tx, fundraiserId)
	if err != nil {
		return nil, err
	}
	withdrawFeesTotal := b.fee.PerWithdrawalFeeTotal(withdrawnCount)

	availableBeforeFee := netBeforeWithdrawals.Sub(withdrawn).Sub(withdrawFeesTotal).Round2().FloorZero()
	// 发起下一笔提现必然再产生一笔固定费，最大可提净额要先扣掉它
	maxPayoutNow := availableBeforeFee.Sub(b.fee.WithdrawalFixedFee()).Round2().FloorZero()

	return &model.BalanceReport{
		FundraiserId:                  fundraiserId,
		GrossPaid:                     gross.Round2(),
		PaidCount:                     paidCount,
		FeeMaintenancePercent:         b.fee.MaintenancePercent(),
		FeeMaintenanceAmount:          feeMaintenance,
		FeePerDonation:                b.fee.PerDonationFee(),
		FeePerDonationTotal:           feePerDonationTotal,
		NetBeforeWithdrawals:          netBeforeWithdrawals,
		WithdrawalsSumNonFailed:       withdrawn.Round2(),
		WithdrawalsCountNonFailed:     withdrawnCount,
		WithdrawFeeFixed:              b.fee.WithdrawalFixedFee(),
		WithdrawFeesTotalApplied:      withdrawFeesTotal,
		AvailableNetBeforeWithdrawFee: availableBeforeFee,
		MaxPayoutNowAfterWithdrawFee:  maxPayoutNow,
	}, nil
}

// ReportForOwner 校验所有权后生成余额报表
// 非所有者与不存在给同样的回答，不泄露活动是否存在
func (b *BalanceLogic) ReportForOwner(ownerUserId, fundraiserId uuid.UUID) (*model.BalanceReport, error) {
	var fundraiser model.Fundraiser
	if err := b.db.First(&fundraiser, "id = ?", fundraiserId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
		}
		return nil, err
	}
	if fundraiser.OwnerUserId != ownerUserId {
		return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
	}
	return b.Report(nil, fundraiserId)
}

// paidContributionStats 已支付贡献的毛额与笔数
func (b *BalanceLogic) paidContributionStats(tx *gorm.DB, fundraiserId uuid.UUID) (model.Money, int64, error) {
	var row struct {
		Total model.Money
		Cnt   int64
	}
	err := tx.Model(&model.Contribution{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(id) AS cnt").
		Where("fundraiser_id = ? AND payment_status = ?", fundraiserId, model.PaymentStatusPaid).
		Scan(&row).Error
	if err != nil {
		return model.Zero, 0, err
	}
	return row.Total, row.Cnt, nil
}

// nonFailedWithdrawalStats 非FAILED提现的总额与笔数
func (b *BalanceLogic) nonFailedWithdrawalStats(tx *gorm.DB, fundraiserId uuid.UUID) (model.Money, int64, error) {
	var row struct {
		Total model.Money
		Cnt   int64
	}
	err := tx.Model(&model.Withdrawal{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(id) AS cnt").
		Where("fundraiser_id = ? AND status IN ?", fundraiserId, []model.WithdrawalStatus{
			model.WithdrawalStatusPending,
			model.WithdrawalStatusProcessing,
			model.WithdrawalStatusCompleted,
		}).
		Scan(&row).Error
	if err != nil {
		return model.Zero, 0, err
	}
	return row.Total, row.Cnt, nil
}
