package logic

import (
	"errors"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/model"
	"github.com/blues/dls/internal/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogic 审计链接的签发与解析
// 令牌无状态自校验，活动行上额外记录哈希和过期时间供运营排查
type AuditLogic struct {
	db         *gorm.DB
	signer     *token.AuditSigner
	defaultTTL time.Duration
}

// NewAuditLogic 创建审计令牌逻辑
func NewAuditLogic(db *gorm.DB, signer *token.AuditSigner, cfg config.TokenConfig) *AuditLogic {
	ttl := time.Duration(cfg.AuditTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuditLogic{db: db, signer: signer, defaultTTL: ttl}
}

// IssueResult 审计令牌签发结果
type IssueResult struct {
	Token     string    `json:"audit_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue 为募捐活动签发审计令牌，仅所有者可发
func (l *AuditLogic) Issue(ownerUserId, fundraiserId uuid.UUID) (*IssueResult, error) {
	var fundraiser model.Fundraiser
	if err := l.db.First(&fundraiser, "id = ?", fundraiserId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
		}
		return nil, err
	}
	if fundraiser.OwnerUserId != ownerUserId {
		return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
	}

	tok, expiresAt, err := l.signer.Issue(fundraiserId, l.defaultTTL)
	if err != nil {
		return nil, err
	}

	hash := token.HashPayoutToken(tok)
	if err := l.db.Model(&model.Fundraiser{}).
		Where("id = ?", fundraiserId).
		Updates(map[string]interface{}{
			"audit_token_hash":       hash,
			"audit_token_expires_at": expiresAt,
		}).Error; err != nil {
		return nil, err
	}

	return &IssueResult{Token: tok, ExpiresAt: expiresAt}, nil
}

// AuditView 审计视图：活动全量信息加完整贡献台账
type AuditView struct {
	Fundraiser    *model.Fundraiser    `json:"fundraiser"`
	Contributions []model.Contribution `json:"contributions"`
}

// ResolveView 校验审计令牌并返回活动的完整贡献台账
func (l *AuditLogic) ResolveView(tokenString string) (*AuditView, error) {
	fundraiserId, err := l.signer.Resolve(tokenString)
	if err != nil {
		return nil, err
	}

	var fundraiser model.Fundraiser
	if err := l.db.First(&fundraiser, "id = ?", fundraiserId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "募捐活动不存在")
		}
		return nil, err
	}

	var contributions []model.Contribution
	if err := l.db.Where("fundraiser_id = ?", fundraiserId).
		Order("created_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	return &AuditView{Fundraiser: &fundraiser, Contributions: contributions}, nil
}
