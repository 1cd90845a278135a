package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Withdrawal 提现申请
// Amount 为发起人实际到手的净额，创建后不可变
type Withdrawal struct {
	Id        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FundraiserId  uuid.UUID `json:"fundraiser_id" gorm:"type:uuid;not null;index"`
	BankAccountId uuid.UUID `json:"bank_account_id" gorm:"type:uuid;not null;index"`

	Amount      Money  `json:"amount" gorm:"not null"`
	Description string `json:"description" gorm:"size:512"`

	Status      WithdrawalStatus `json:"status" gorm:"default:'PENDING'"`
	RequestedAt time.Time        `json:"requested_at" gorm:"not null"`
	ProcessedAt *time.Time       `json:"processed_at"`

	// 提现详情链接的一次性令牌：只存哈希，按时间和查看次数双重限制
	PayoutTokenHash      string     `json:"-" gorm:"size:64;index"`
	PayoutTokenExpiresAt *time.Time `json:"-"`
	PayoutTokenViews     int        `json:"-" gorm:"default:0"`
	PayoutTokenMaxViews  int        `json:"-" gorm:"default:5"`
}

// TableName 自定义表名
func (Withdrawal) TableName() string {
	return "withdrawal"
}

// BeforeCreate 生成主键
func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.Id == uuid.Nil {
		w.Id = uuid.New()
	}
	return nil
}

// WithdrawalStatus 提现状态
type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "PENDING"    // 待处理
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING" // 处理中
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"  // 已完成，终态
	WithdrawalStatusFailed     WithdrawalStatus = "FAILED"     // 失败，终态
)

// withdrawalStatusRank 状态推进顺序，状态只允许向前
var withdrawalStatusRank = map[WithdrawalStatus]int{
	WithdrawalStatusPending:    0,
	WithdrawalStatusProcessing: 1,
	WithdrawalStatusCompleted:  2,
}

// IsTerminal 是否为终态
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusFailed
}

// Valid 是否为合法状态值
func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusProcessing, WithdrawalStatusCompleted, WithdrawalStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo 状态迁移是否允许
// PENDING→PROCESSING→COMPLETED 单向推进，FAILED 仅可由非终态进入，同状态视为幂等
func (s WithdrawalStatus) CanTransitionTo(target WithdrawalStatus) bool {
	if s == target {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if target == WithdrawalStatusFailed {
		return true
	}
	return withdrawalStatusRank[target] > withdrawalStatusRank[s]
}
