package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fundraiser 募捐活动
type Fundraiser struct {
	Id        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerUserId uuid.UUID `json:"owner_user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`

	// 目标金额与累计到账金额
	// CurrentAmount 是已支付贡献的冗余累计值，由对账状态机在同一事务内增量维护
	GoalAmount    Money `json:"goal_amount" gorm:"not null"`
	CurrentAmount Money `json:"current_amount" gorm:"not null"`

	Status FundraiserStatus `json:"status" gorm:"default:'active'"`

	// 公开与审计链接
	IsPublic            bool       `json:"is_public" gorm:"default:false"`
	PublicSlug          string     `json:"public_slug" gorm:"uniqueIndex"`
	AuditTokenHash      string     `json:"-" gorm:"size:512"`
	AuditTokenExpiresAt *time.Time `json:"-"`
}

// TableName 自定义表名
func (Fundraiser) TableName() string {
	return "fundraiser"
}

// BeforeCreate 生成主键
func (f *Fundraiser) BeforeCreate(tx *gorm.DB) error {
	if f.Id == uuid.Nil {
		f.Id = uuid.New()
	}
	return nil
}

// FundraiserStatus 募捐活动状态
type FundraiserStatus string

const (
	FundraiserStatusActive   FundraiserStatus = "active"   // 进行中，可接受贡献
	FundraiserStatusPaused   FundraiserStatus = "paused"   // 暂停
	FundraiserStatusFinished FundraiserStatus = "finished" // 已结束
)
