package handler

import (
	"time"

	"github.com/blues/dls/internal/model"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CreateContributionRequest 创建贡献请求
type CreateContributionRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Message     string  `json:"message"`
	IsAnonymous bool    `json:"is_anonymous"`
	PayerName   string  `json:"payer_name"`
	PayerEmail  string  `json:"payer_email"`
}

// CreateWithdrawalRequest 创建提现请求
type CreateWithdrawalRequest struct {
	FundraiserId  string  `json:"fundraiser_id" binding:"required"`
	BankAccountId string  `json:"bank_account_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Description   string  `json:"description"`
}

// UpdateWithdrawalStatusRequest 推进提现状态请求
type UpdateWithdrawalStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	ProcessedAt string `json:"processed_at"` // ISO-8601，可选，仅COMPLETED时生效
}

// WithdrawalResponse 提现响应
type WithdrawalResponse struct {
	Id            string      `json:"id"`
	FundraiserId  string      `json:"fundraiser_id"`
	BankAccountId string      `json:"bank_account_id"`
	Amount        model.Money `json:"amount"`
	Description   string      `json:"description"`
	Status        string      `json:"status"`
	RequestedAt   time.Time   `json:"requested_at"`
	ProcessedAt   *time.Time  `json:"processed_at"`
}

// BankAccountResponse 银行账户响应（提现详情链接里返回完整信息）
type BankAccountResponse struct {
	Id                string `json:"id"`
	BankCode          string `json:"bank_code"`
	BankName          string `json:"bank_name"`
	Agency            string `json:"agency"`
	AccountNumber     string `json:"account_number"`
	AccountType       string `json:"account_type"`
	AccountHolderName string `json:"account_holder_name"`
	DocumentNumber    string `json:"document_number"`
}

// ToWithdrawalResponse 模型转响应
func ToWithdrawalResponse(w *model.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		Id:            w.Id.String(),
		FundraiserId:  w.FundraiserId.String(),
		BankAccountId: w.BankAccountId.String(),
		Amount:        w.Amount.Round2(),
		Description:   w.Description,
		Status:        string(w.Status),
		RequestedAt:   w.RequestedAt,
		ProcessedAt:   w.ProcessedAt,
	}
}

// ToWithdrawalResponseList 模型列表转响应列表
func ToWithdrawalResponseList(ws []model.Withdrawal) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(ws))
	for i := range ws {
		out = append(out, ToWithdrawalResponse(&ws[i]))
	}
	return out
}

// ToBankAccountResponse 模型转响应
func ToBankAccountResponse(b *model.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		Id:                b.Id.String(),
		BankCode:          b.BankCode,
		BankName:          b.BankName,
		Agency:            b.Agency,
		AccountNumber:     b.AccountNumber,
		AccountType:       string(b.AccountType),
		AccountHolderName: b.AccountHolderName,
		DocumentNumber:    b.DocumentNumber,
	}
}

// PayoutViewResponse 提现详情链接响应
type PayoutViewResponse struct {
	Withdrawal     WithdrawalResponse   `json:"withdrawal"`
	BankAccount    *BankAccountResponse `json:"bank_account"`
	FundraiserName string               `json:"fundraiser_title"`
	ViewsUsed      int                  `json:"views_used"`
	ViewsRemaining int                  `json:"views_remaining"`
	ExpiresAt      *time.Time           `json:"expires_at"`
}
