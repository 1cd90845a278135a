package handler

import (
	"net/http"

	"github.com/blues/dls/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicHandler 免认证的令牌视图处理器
type PublicHandler struct {
	auditLogic  *logic.AuditLogic
	payoutLogic *logic.PayoutLogic
}

// NewPublicHandler 创建公开视图处理器
func NewPublicHandler(auditLogic *logic.AuditLogic, payoutLogic *logic.PayoutLogic) *PublicHandler {
	return &PublicHandler{auditLogic: auditLogic, payoutLogic: payoutLogic}
}

// ShareAudit 签发审计令牌（所有者操作）
func (h *PublicHandler) ShareAudit(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	fundraiserId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的募捐活动ID")
		return
	}

	result, err := h.auditLogic.Issue(userId, fundraiserId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "审计令牌签发成功", result)
}

// AuditView 审计视图：校验签名令牌后返回完整贡献台账
func (h *PublicHandler) AuditView(c *gin.Context) {
	view, err := h.auditLogic.ResolveView(c.Param("token"))
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取审计视图成功", view)
}

// PayoutView 提现详情视图：不透明令牌按查看次数自毁
func (h *PublicHandler) PayoutView(c *gin.Context) {
	view, err := h.payoutLogic.Resolve(c.Param("token"))
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取提现详情成功", PayoutViewResponse{
		Withdrawal:     ToWithdrawalResponse(view.Withdrawal),
		BankAccount:    ToBankAccountResponse(view.BankAccount),
		FundraiserName: view.Fundraiser.Title,
		ViewsUsed:      view.ViewsUsed,
		ViewsRemaining: view.ViewsRemaining,
		ExpiresAt:      view.ExpiresAt,
	})
}
