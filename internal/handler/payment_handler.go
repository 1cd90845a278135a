package handler

import (
	"io"
	"net/http"

	"github.com/blues/dls/internal/logic"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付对账处理器
type PaymentHandler struct {
	reconcileLogic *logic.ReconcileLogic
}

// NewPaymentHandler 创建支付对账处理器
func NewPaymentHandler(reconcileLogic *logic.ReconcileLogic) *PaymentHandler {
	return &PaymentHandler{reconcileLogic: reconcileLogic}
}

// Webhook 支付网关回调
// 先验签再解析，任何校验失败都不会改动本地状态
func (h *PaymentHandler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "读取请求体失败")
		return
	}

	result, err := h.reconcileLogic.HandleWebhook(
		rawBody,
		c.GetHeader("X-Signature"),
		c.GetHeader("X-Timestamp"),
	)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "payment updated", result)
}

// Refresh 主动刷新对账（拉模式）
func (h *PaymentHandler) Refresh(c *gin.Context) {
	externalId := c.Param("external_id")

	result, err := h.reconcileLogic.Refresh(c.Request.Context(), externalId)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "对账完成", result)
}
