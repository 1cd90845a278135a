package logic

import (
	"context"
	"errors"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/gateway"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContributionLogic 贡献记录业务逻辑
type ContributionLogic struct {
	db      *gorm.DB
	gw      *gateway.Client
	minimum model.Money
}

// NewContributionLogic 创建贡献记录业务逻辑
func NewContributionLogic(db *gorm.DB, gw *gateway.Client, cfg config.WithdrawConfig) *ContributionLogic {
	return &ContributionLogic{
		db:      db,
		gw:      gw,
		minimum: model.MoneyFromFloat(cfg.MinContributionAmount).Round2(),
	}
}

// CreateContributionInput 创建贡献的入参
// ContributorUserId 允许为空（匿名贡献）
type CreateContributionInput struct {
	FundraiserId      uuid.UUID
	ContributorUserId *uuid.UUID
	Amount            model.Money
	Message           string
	IsAnonymous       bool
	Payer             gateway.PayerInfo
}

// CreateContributionResult 创建贡献的出参，含可展示的支付载荷
type CreateContributionResult struct {
	Contribution *model.Contribution
	Intent       *gateway.PaymentIntent
}

// Create 创建贡献并向网关发起支付意向
// 网关失败不落库；落库失败时支付意向成为孤儿，由网关侧过期回收
func (l *ContributionLogic) Create(ctx context.Context, in CreateContributionInput) (*CreateContributionResult, error) {
	amount := in.Amount.Round2()
	if amount.LessThan(l.minimum) {
		return nil, apperr.Newf(apperr.KindValidation, "贡献金额不能低于 %s", l.minimum.String()).
			WithContext(map[string]interface{}{"minimum": l.minimum.Float64()})
	}

	var fundraiser model.Fundraiser
	if err := l.db.First(&fundraiser, "id = ?", in.FundraiserId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
		}
		return nil, err
	}

	if fundraiser.Status != model.FundraiserStatusActive {
		return nil, apperr.New(apperr.KindValidation, "募捐活动不在进行中，无法接受贡献")
	}

	// 先创建支付意向，网关错误直接上抛，不产生本地记录
	intent, err := l.gw.CreatePaymentIntent(ctx, amount, in.Payer)
	if err != nil {
		return nil, err
	}

	contribution := &model.Contribution{
		FundraiserId:      in.FundraiserId,
		ContributorUserId: in.ContributorUserId,
		Amount:            amount,
		Message:           in.Message,
		IsAnonymous:       in.IsAnonymous,
		PaymentStatus:     model.PaymentStatusPending,
		PaymentIntentId:   intent.PaymentIntentId,
	}
	if err := l.db.Create(contribution).Error; err != nil {
		return nil, err
	}

	logger.Info("Contribution %s created for fundraiser %s, intent %s",
		contribution.Id, in.FundraiserId, intent.PaymentIntentId)

	return &CreateContributionResult{Contribution: contribution, Intent: intent}, nil
}

// ListByContributor 列出某用户的全部贡献，新的在前
func (l *ContributionLogic) ListByContributor(userId uuid.UUID) ([]model.Contribution, error) {
	var contributions []model.Contribution
	err := l.db.Where("contributor_user_id = ?", userId).
		Order("created_at DESC").
		Find(&contributions).Error
	return contributions, err
}
