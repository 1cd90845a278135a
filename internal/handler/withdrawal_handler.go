package handler

import (
	"net/http"
	"time"

	"github.com/blues/dls/internal/logic"
	"github.com/blues/dls/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler 提现处理器
type WithdrawalHandler struct {
	withdrawalLogic *logic.WithdrawalLogic
	balanceLogic    *logic.BalanceLogic
}

// NewWithdrawalHandler 创建提现处理器
func NewWithdrawalHandler(withdrawalLogic *logic.WithdrawalLogic, balanceLogic *logic.BalanceLogic) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalLogic: withdrawalLogic,
		balanceLogic:    balanceLogic,
	}
}

// GetAvailableBalance 募捐活动的费用/余额明细报表，仅所有者可见
func (h *WithdrawalHandler) GetAvailableBalance(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	fundraiserId, err := uuid.Parse(c.Param("fundraiser_id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的募捐活动ID")
		return
	}

	report, err := h.balanceLogic.ReportForOwner(userId, fundraiserId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取余额明细成功", report)
}

// CreateWithdrawal 创建提现申请
// 余额不足时返回422，并带上余额快照供前端展示
func (h *WithdrawalHandler) CreateWithdrawal(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}

	fundraiserId, err := uuid.Parse(req.FundraiserId)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的募捐活动ID")
		return
	}
	bankAccountId, err := uuid.Parse(req.BankAccountId)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的银行账户ID")
		return
	}

	result, err := h.withdrawalLogic.Create(logic.CreateWithdrawalInput{
		OwnerUserId:   userId,
		FundraiserId:  fundraiserId,
		BankAccountId: bankAccountId,
		Amount:        model.MoneyFromFloat(req.Amount),
		Description:   req.Description,
	})
	if err != nil {
		FailWithError(c, err)
		return
	}

	resp := ToWithdrawalResponse(result.Withdrawal)
	SuccessResponse(c, http.StatusCreated, "提现申请创建成功", gin.H{
		"withdrawal":   resp,
		"payout_token": result.PayoutToken,
	})
}

// ListWithdrawals 列出当前用户的提现申请
func (h *WithdrawalHandler) ListWithdrawals(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	withdrawals, err := h.withdrawalLogic.List(userId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取提现记录成功", ToWithdrawalResponseList(withdrawals))
}

// UpdateWithdrawalStatus 推进提现状态，COMPLETED触发发票
func (h *WithdrawalHandler) UpdateWithdrawalStatus(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	withdrawalId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提现ID")
		return
	}

	var req UpdateWithdrawalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}

	var processedAt *time.Time
	if req.ProcessedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ProcessedAt)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "processed_at 必须是 ISO-8601 格式")
			return
		}
		processedAt = &t
	}

	withdrawal, err := h.withdrawalLogic.Advance(userId, withdrawalId, model.WithdrawalStatus(req.Status), processedAt)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提现状态更新成功", ToWithdrawalResponse(withdrawal))
}

// ListInvoices 列出当前用户的发票
func (h *WithdrawalHandler) ListInvoices(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	invoices, err := h.withdrawalLogic.ListInvoices(userId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取发票成功", invoices)
}
