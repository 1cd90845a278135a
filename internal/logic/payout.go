package logic

import (
	"errors"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/model"
	"github.com/blues/dls/internal/token"
	"gorm.io/gorm"
)

// PayoutLogic 提现详情链接的令牌解析
type PayoutLogic struct {
	db *gorm.DB
}

// NewPayoutLogic 创建提现令牌逻辑
func NewPayoutLogic(db *gorm.DB) *PayoutLogic {
	return &PayoutLogic{db: db}
}

// PayoutView 提现详情，银行账户明细加剩余查看次数
type PayoutView struct {
	Withdrawal     *model.Withdrawal  `json:"withdrawal"`
	BankAccount    *model.BankAccount `json:"bank_account"`
	Fundraiser     *model.Fundraiser  `json:"fundraiser"`
	ViewsUsed      int                `json:"views_used"`
	ViewsRemaining int                `json:"views_remaining"`
	ExpiresAt      *time.Time         `json:"expires_at"`
}

// Resolve 用明文令牌换取提现的银行信息
// 校验顺序：存在 → 未过期 → 查看次数未用尽；通过后查看计数+1，
// 读取与递增在同一事务内且提现行持排他锁，并发访问不可能都越过上限
func (l *PayoutLogic) Resolve(plaintext string) (*PayoutView, error) {
	if len(plaintext) < 10 {
		return nil, apperr.New(apperr.KindNotFound, "提现链接无效")
	}
	hash := token.HashPayoutToken(plaintext)

	var view PayoutView
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var withdrawal model.Withdrawal
		if err := forUpdate(tx).
			First(&withdrawal, "payout_token_hash = ?", hash).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "提现链接无效")
			}
			return err
		}

		now := time.Now()
		if withdrawal.PayoutTokenExpiresAt != nil && now.After(*withdrawal.PayoutTokenExpiresAt) {
			return apperr.New(apperr.KindTokenExpired, "提现链接已过期")
		}
		if withdrawal.PayoutTokenViews >= withdrawal.PayoutTokenMaxViews {
			return apperr.New(apperr.KindTokenExhausted, "提现链接查看次数已用尽")
		}

		if err := tx.Model(&model.Withdrawal{}).
			Where("id = ?", withdrawal.Id).
			Update("payout_token_views", gorm.Expr("payout_token_views + 1")).Error; err != nil {
			return err
		}
		withdrawal.PayoutTokenViews++

		var bankAccount model.BankAccount
		if err := tx.First(&bankAccount, "id = ?", withdrawal.BankAccountId).Error; err != nil {
			return err
		}
		var fundraiser model.Fundraiser
		if err := tx.First(&fundraiser, "id = ?", withdrawal.FundraiserId).Error; err != nil {
			return err
		}

		view = PayoutView{
			Withdrawal:     &withdrawal,
			BankAccount:    &bankAccount,
			Fundraiser:     &fundraiser,
			ViewsUsed:      withdrawal.PayoutTokenViews,
			ViewsRemaining: withdrawal.PayoutTokenMaxViews - withdrawal.PayoutTokenViews,
			ExpiresAt:      withdrawal.PayoutTokenExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
