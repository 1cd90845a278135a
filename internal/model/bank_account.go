package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BankAccount 银行账户，提现目标
// 账务核心只读引用，增删改由外部的账户管理模块负责
type BankAccount struct {
	Id        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerUserId uuid.UUID `json:"owner_user_id" gorm:"type:uuid;not null;index"`

	BankCode          string      `json:"bank_code" gorm:"size:10;not null"`
	BankName          string      `json:"bank_name" gorm:"size:255"`
	Agency            string      `json:"agency" gorm:"size:32;not null"`
	AccountNumber     string      `json:"account_number" gorm:"size:64;not null"`
	AccountType       AccountType `json:"account_type" gorm:"default:'CHECKING'"`
	AccountHolderName string      `json:"account_holder_name" gorm:"size:255;not null"`
	DocumentNumber    string      `json:"document_number" gorm:"size:32;not null"`

	IsDefault bool `json:"is_default" gorm:"default:false"`
}

// TableName 自定义表名
func (BankAccount) TableName() string {
	return "bank_account"
}

// BeforeCreate 生成主键
func (b *BankAccount) BeforeCreate(tx *gorm.DB) error {
	if b.Id == uuid.Nil {
		b.Id = uuid.New()
	}
	return nil
}

// AccountType 账户类型
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING" // 活期
	AccountTypeSavings  AccountType = "SAVINGS"  // 储蓄
)
