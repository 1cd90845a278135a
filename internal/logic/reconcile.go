package logic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/gateway"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/model"
	"github.com/blues/dls/internal/token"
	"gorm.io/gorm"
)

// ReconcileLogic 支付对账状态机
// PENDING → {PAID, FAILED}，两者都是终态；入口是网关回调（推）和主动刷新（拉）
type ReconcileLogic struct {
	db       *gorm.DB
	gw       *gateway.Client
	verifier *token.WebhookVerifier
}

// NewReconcileLogic 创建对账逻辑
func NewReconcileLogic(db *gorm.DB, gw *gateway.Client, verifier *token.WebhookVerifier) *ReconcileLogic {
	return &ReconcileLogic{db: db, gw: gw, verifier: verifier}
}

// NormalizeStatus 把网关的状态词表归一化为内部三值状态
// 未知状态一律视为仍在等待，不做任何写入
func NormalizeStatus(provider string) model.PaymentStatus {
	switch provider {
	case "CONCLUDED":
		return model.PaymentStatusPaid
	case "REMOVED_BY_USER", "REMOVED_BY_PSP":
		return model.PaymentStatusFailed
	default:
		return model.PaymentStatusPending
	}
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	PaymentIntentId string              `json:"payment_intent_id"`
	Status          model.PaymentStatus `json:"status"`
	Changed         bool                `json:"changed"`
}

// ApplyStatus 把归一化后的支付状态落到贡献记录上
// 幂等：已是目标状态时不产生写入；落到PAID时在同一事务内增量更新活动累计金额，
// 贡献行和活动行都持排他锁，并发回调/轮询下增量只会发生一次
func (l *ReconcileLogic) ApplyStatus(paymentIntentId string, providerStatus string) (*ReconcileResult, error) {
	if paymentIntentId == "" {
		return nil, apperr.New(apperr.KindValidation, "缺少支付意向ID")
	}

	normalized := NormalizeStatus(providerStatus)
	result := &ReconcileResult{PaymentIntentId: paymentIntentId, Status: normalized}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var contribution model.Contribution
		if err := forUpdate(tx).
			First(&contribution, "payment_intent_id = ?", paymentIntentId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "支付意向对应的贡献不存在")
			}
			return err
		}

		// 已是目标状态：无操作成功
		if contribution.PaymentStatus == normalized {
			result.Status = contribution.PaymentStatus
			return nil
		}

		// 归一化结果仍是PENDING：网关还没给出结论，不写也不算冲突
		if normalized == model.PaymentStatusPending {
			result.Status = contribution.PaymentStatus
			return nil
		}

		// 终态不可离开，PAID→FAILED 或 FAILED→PAID 均拒绝
		if contribution.PaymentStatus.IsTerminal() {
			return apperr.Newf(apperr.KindStateConflict,
				"贡献已处于终态 %s，拒绝迁移到 %s", contribution.PaymentStatus, normalized)
		}

		if err := tx.Model(&model.Contribution{}).
			Where("id = ?", contribution.Id).
			Update("payment_status", normalized).Error; err != nil {
			return err
		}
		result.Changed = true

		// 仅在落到PAID的那次迁移中增量维护活动累计金额
		if normalized == model.PaymentStatusPaid {
			var fundraiser model.Fundraiser
			if err := forUpdate(tx).
				First(&fundraiser, "id = ?", contribution.FundraiserId).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Fundraiser{}).
				Where("id = ?", fundraiser.Id).
				Update("current_amount", gorm.Expr("current_amount + ?", contribution.Amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		logger.Info("Contribution intent %s reconciled to %s", paymentIntentId, result.Status)
	}
	return result, nil
}

// Refresh 主动向网关拉取状态并对账
// 网关超时/5xx以可重试错误上抛，本地状态不动
func (l *ReconcileLogic) Refresh(ctx context.Context, paymentIntentId string) (*ReconcileResult, error) {
	if paymentIntentId == "" {
		return nil, apperr.New(apperr.KindValidation, "缺少支付意向ID")
	}

	providerStatus, err := l.gw.FetchStatus(ctx, paymentIntentId)
	if err != nil {
		return nil, err
	}
	return l.ApplyStatus(paymentIntentId, providerStatus)
}

// webhookPayload 回调报文体
type webhookPayload struct {
	ExternalId string `json:"external_id"`
	NewStatus  string `json:"new_status"`
}

// HandleWebhook 处理网关回调
// 顺序：验签 → 解析 → 对账；验签或解析失败时不发生任何状态变更
func (l *ReconcileLogic) HandleWebhook(rawBody []byte, signatureHeader, timestampHeader string) (*ReconcileResult, error) {
	if err := l.verifier.Verify(rawBody, signatureHeader, timestampHeader); err != nil {
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "回调报文解析失败", err)
	}
	if payload.ExternalId == "" || payload.NewStatus == "" {
		return nil, apperr.New(apperr.KindValidation, "回调报文缺少 external_id 或 new_status")
	}

	return l.ApplyStatus(payload.ExternalId, payload.NewStatus)
}
