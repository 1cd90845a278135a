package logic

import (
	"errors"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/model"
	"github.com/blues/dls/internal/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalLogic 提现生命周期状态机
type WithdrawalLogic struct {
	db             *gorm.DB
	fee            *FeePolicy
	balance        *BalanceLogic
	minAmount      model.Money
	payoutExp      time.Duration
	payoutMaxViews int
}

// NewWithdrawalLogic 创建提现业务逻辑
func NewWithdrawalLogic(db *gorm.DB, fee *FeePolicy, balance *BalanceLogic, wcfg config.WithdrawConfig, tcfg config.TokenConfig) *WithdrawalLogic {
	maxViews := tcfg.PayoutMaxViews
	if maxViews <= 0 {
		maxViews = 5
	}
	return &WithdrawalLogic{
		db:             db,
		fee:            fee,
		balance:        balance,
		minAmount:      model.MoneyFromFloat(wcfg.MinAmount).Round2(),
		payoutExp:      time.Duration(tcfg.PayoutExpHours) * time.Hour,
		payoutMaxViews: maxViews,
	}
}

// CreateWithdrawalInput 创建提现的入参
// Amount 是发起人希望到手的净额
type CreateWithdrawalInput struct {
	OwnerUserId   uuid.UUID
	FundraiserId  uuid.UUID
	BankAccountId uuid.UUID
	Amount        model.Money
	Description   string
}

// CreateWithdrawalResult 创建提现的出参
// PayoutToken 明文只在这里出现一次，之后只能用它访问提现详情链接
type CreateWithdrawalResult struct {
	Withdrawal  *model.Withdrawal
	PayoutToken string
}

// Create 创建提现申请
// 余额计算和插入在同一事务内，活动行持排他锁：并发的两笔申请不可能都通过超额校验
func (l *WithdrawalLogic) Create(in CreateWithdrawalInput) (*CreateWithdrawalResult, error) {
	amount := in.Amount.Round2()
	if amount.LessThan(l.minAmount) {
		return nil, apperr.Newf(apperr.KindValidation, "提现金额不能低于 %s", l.minAmount.String()).
			WithContext(map[string]interface{}{"minimum": l.minAmount.Float64()})
	}

	var result CreateWithdrawalResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var fundraiser model.Fundraiser
		if err := forUpdate(tx).
			First(&fundraiser, "id = ?", in.FundraiserId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "募捐活动不存在")
			}
			return err
		}
		if fundraiser.OwnerUserId != in.OwnerUserId {
			return apperr.New(apperr.KindNotFound, "募捐活动不存在")
		}

		var bankAccount model.BankAccount
		if err := tx.First(&bankAccount, "id = ?", in.BankAccountId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindValidation, "银行账户无效")
			}
			return err
		}
		if bankAccount.OwnerUserId != in.OwnerUserId {
			return apperr.New(apperr.KindValidation, "银行账户无效")
		}

		report, err := l.balance.Report(tx, fundraiser.Id)
		if err != nil {
			return err
		}

		// 申请的是净额，不得超过扣完下一笔提现固定费后的最大可提金额
		if amount.GreaterThan(report.MaxPayoutNowAfterWithdrawFee) {
			return apperr.New(apperr.KindInsufficientFunds, "提现金额超出当前可提现余额").
				WithContext(map[string]interface{}{
					"requested_amount":                  amount.Float64(),
					"available_net_before_withdraw_fee": report.AvailableNetBeforeWithdrawFee.Float64(),
					"withdraw_fee_fixed":                report.WithdrawFeeFixed.Float64(),
					"max_payout_now_after_withdraw_fee": report.MaxPayoutNowAfterWithdrawFee.Float64(),
					"report":                            report,
				})
		}

		plaintext, hash, err := token.NewPayoutToken()
		if err != nil {
			return err
		}

		now := time.Now()
		expiresAt := now.Add(l.payoutExp)
		withdrawal := &model.Withdrawal{
			FundraiserId:         fundraiser.Id,
			BankAccountId:        bankAccount.Id,
			Amount:               amount,
			Description:          in.Description,
			Status:               model.WithdrawalStatusPending,
			RequestedAt:          now,
			PayoutTokenHash:      hash,
			PayoutTokenExpiresAt: &expiresAt,
			PayoutTokenViews:     0,
			PayoutTokenMaxViews:  l.payoutMaxViews,
		}
		if err := tx.Create(withdrawal).Error; err != nil {
			return err
		}

		result.Withdrawal = withdrawal
		result.PayoutToken = plaintext
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal %s created for fundraiser %s, amount %s",
		result.Withdrawal.Id, in.FundraiserId, result.Withdrawal.Amount.String())
	return &result, nil
}

// Advance 推进提现状态
// 只允许前进：PENDING→PROCESSING→COMPLETED，FAILED 仅可从非终态进入；
// 到达COMPLETED时写处理时间并保证发票恰好创建一次
func (l *WithdrawalLogic) Advance(ownerUserId, withdrawalId uuid.UUID, target model.WithdrawalStatus, processedAt *time.Time) (*model.Withdrawal, error) {
	if !target.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "未知的提现状态: %s", target)
	}

	var withdrawal model.Withdrawal
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).
			Joins("JOIN fundraiser ON fundraiser.id = withdrawal.fundraiser_id").
			Where("withdrawal.id = ? AND fundraiser.owner_user_id = ?", withdrawalId, ownerUserId).
			First(&withdrawal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "提现申请不存在")
			}
			return err
		}

		if !withdrawal.Status.CanTransitionTo(target) {
			return apperr.Newf(apperr.KindStateConflict,
				"提现状态不允许从 %s 迁移到 %s", withdrawal.Status, target)
		}

		updates := map[string]interface{}{"status": target}
		if target == model.WithdrawalStatusCompleted {
			switch {
			case processedAt != nil:
				updates["processed_at"] = *processedAt
			case withdrawal.ProcessedAt == nil:
				updates["processed_at"] = time.Now()
			}
		}

		if err := tx.Model(&model.Withdrawal{}).
			Where("id = ?", withdrawal.Id).
			Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&withdrawal, "id = ?", withdrawal.Id).Error; err != nil {
			return err
		}

		// COMPLETED 触发发票，幂等
		if target == model.WithdrawalStatusCompleted {
			if _, err := l.ensureInvoice(tx, &withdrawal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal %s advanced to %s", withdrawal.Id, withdrawal.Status)
	return &withdrawal, nil
}

// ensureInvoice 为已完成的提现创建发票，已存在时原样返回
// 税费取固定提现费，但不超过提现金额本身
func (l *WithdrawalLogic) ensureInvoice(tx *gorm.DB, w *model.Withdrawal) (*model.Invoice, error) {
	var existing model.Invoice
	err := tx.First(&existing, "withdrawal_id = ?", w.Id).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taxAmount := l.fee.WithdrawalFixedFee()
	if taxAmount.GreaterThan(w.Amount) {
		taxAmount = w.Amount.Round2()
	}

	invoice := &model.Invoice{
		WithdrawalId: w.Id,
		FundraiserId: w.FundraiserId,
		Amount:       w.Amount.Round2(),
		TaxAmount:    taxAmount,
		IssuedAt:     time.Now(),
	}
	if err := tx.Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// EnsureInvoice 对外暴露的幂等发票创建（管理侧补偿用）
func (l *WithdrawalLogic) EnsureInvoice(w *model.Withdrawal) (*model.Invoice, error) {
	var invoice *model.Invoice
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var locked model.Withdrawal
		if err := forUpdate(tx).First(&locked, "id = ?", w.Id).Error; err != nil {
			return err
		}
		inv, err := l.ensureInvoice(tx, &locked)
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	return invoice, err
}

// List 列出某用户全部募捐活动下的提现申请，新的在前
func (l *WithdrawalLogic) List(ownerUserId uuid.UUID) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := l.db.
		Joins("JOIN fundraiser ON fundraiser.id = withdrawal.fundraiser_id").
		Where("fundraiser.owner_user_id = ?", ownerUserId).
		Order("withdrawal.requested_at DESC").
		Find(&withdrawals).Error
	return withdrawals, err
}

// ListInvoices 列出某用户的全部发票，新的在前
func (l *WithdrawalLogic) ListInvoices(ownerUserId uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := l.db.
		Joins("JOIN fundraiser ON fundraiser.id = invoice.fundraiser_id").
		Where("fundraiser.owner_user_id = ?", ownerUserId).
		Order("invoice.issued_at DESC").
		Find(&invoices).Error
	return invoices, err
}
