package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contribution 贡献记录（单笔捐款）
// 金额创建后不可变，支付状态只能由对账状态机修改，记录永不删除
type Contribution struct {
	Id        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	FundraiserId uuid.UUID `json:"fundraiser_id" gorm:"type:uuid;not null;index"`
	// 允许匿名贡献，未登录时为空
	ContributorUserId *uuid.UUID `json:"contributor_user_id" gorm:"type:uuid;index"`

	Amount      Money  `json:"amount" gorm:"not null"`
	Message     string `json:"message" gorm:"size:512"`
	IsAnonymous bool   `json:"is_anonymous" gorm:"default:false"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"default:'pending'"`
	// 支付网关侧的支付意向ID，幂等查找的键
	PaymentIntentId string `json:"payment_intent_id" gorm:"uniqueIndex;size:255"`
}

// TableName 自定义表名
func (Contribution) TableName() string {
	return "contribution"
}

// BeforeCreate 生成主键
func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // 待支付
	PaymentStatusPaid    PaymentStatus = "paid"    // 已支付，终态
	PaymentStatusFailed  PaymentStatus = "failed"  // 失败，终态
)

// IsTerminal 是否为终态
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}
