package handler

import (
	"net/http"

	"github.com/blues/dls/internal/gateway"
	"github.com/blues/dls/internal/logic"
	"github.com/blues/dls/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContributionHandler 贡献处理器
type ContributionHandler struct {
	contributionLogic *logic.ContributionLogic
}

// NewContributionHandler 创建贡献处理器
func NewContributionHandler(contributionLogic *logic.ContributionLogic) *ContributionHandler {
	return &ContributionHandler{contributionLogic: contributionLogic}
}

// CreateContribution 创建贡献，返回支付意向ID和可展示的PIX载荷
func (h *ContributionHandler) CreateContribution(c *gin.Context) {
	fundraiserId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的募捐活动ID")
		return
	}

	var req CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}

	result, err := h.contributionLogic.Create(c.Request.Context(), logic.CreateContributionInput{
		FundraiserId:      fundraiserId,
		ContributorUserId: optionalUserId(c),
		Amount:            model.MoneyFromFloat(req.Amount),
		Message:           req.Message,
		IsAnonymous:       req.IsAnonymous,
		Payer:             gateway.PayerInfo{Name: req.PayerName, Email: req.PayerEmail},
	})
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "贡献创建成功", gin.H{
		"contribution_id":   result.Contribution.Id,
		"payment_intent_id": result.Intent.PaymentIntentId,
		"pix_copia_e_cola":  result.Intent.PixCopiaECola,
		"brcode":            result.Intent.BRCode,
	})
}

// ListMyContributions 列出当前用户的贡献记录
func (h *ContributionHandler) ListMyContributions(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	contributions, err := h.contributionLogic.ListByContributor(userId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", contributions)
}
