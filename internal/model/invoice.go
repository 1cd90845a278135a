package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice 发票记录
// 提现到达 COMPLETED 时恰好创建一次，创建后不可变
type Invoice struct {
	Id        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// 每个提现最多一张发票
	WithdrawalId uuid.UUID `json:"withdrawal_id" gorm:"type:uuid;not null;uniqueIndex"`
	FundraiserId uuid.UUID `json:"fundraiser_id" gorm:"type:uuid;not null;index"`

	Amount    Money     `json:"amount" gorm:"not null"`     // 毛额（等于提现金额）
	TaxAmount Money     `json:"tax_amount" gorm:"not null"` // 税费（固定提现费，上限为提现金额）
	IssuedAt  time.Time `json:"issued_at" gorm:"not null"`

	// 下游文档生成流程回填
	PdfUrl string `json:"pdf_url" gorm:"size:1024"`
}

// TableName 自定义表名
func (Invoice) TableName() string {
	return "invoice"
}

// BeforeCreate 生成主键
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.Id == uuid.Nil {
		i.Id = uuid.New()
	}
	return nil
}
