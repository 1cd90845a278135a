package router

import (
	"github.com/blues/dls/internal/handler"
	"github.com/blues/dls/internal/logic"
	"github.com/gin-gonic/gin"
)

// Deps 路由依赖
type Deps struct {
	ContributionLogic *logic.ContributionLogic
	ReconcileLogic    *logic.ReconcileLogic
	BalanceLogic      *logic.BalanceLogic
	WithdrawalLogic   *logic.WithdrawalLogic
	AuditLogic        *logic.AuditLogic
	PayoutLogic       *logic.PayoutLogic
}

func Setup(deps Deps) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "donation-ledger-service",
		})
	})

	contributionHandler := handler.NewContributionHandler(deps.ContributionLogic)
	paymentHandler := handler.NewPaymentHandler(deps.ReconcileLogic)
	withdrawalHandler := handler.NewWithdrawalHandler(deps.WithdrawalLogic, deps.BalanceLogic)
	publicHandler := handler.NewPublicHandler(deps.AuditLogic, deps.PayoutLogic)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		fundraisers := v1.Group("/fundraisers")
		{
			fundraisers.POST("/:id/contributions", contributionHandler.CreateContribution)
			fundraisers.POST("/:id/share/audit", publicHandler.ShareAudit)
		}

		contributions := v1.Group("/contributions")
		{
			contributions.GET("/mine", contributionHandler.ListMyContributions)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/callback", paymentHandler.Webhook)
			payments.POST("/:external_id/refresh", paymentHandler.Refresh)
		}

		withdrawals := v1.Group("/withdrawals")
		{
			withdrawals.GET("/available/:fundraiser_id", withdrawalHandler.GetAvailableBalance)
			withdrawals.POST("", withdrawalHandler.CreateWithdrawal)
			withdrawals.GET("", withdrawalHandler.ListWithdrawals)
			withdrawals.PATCH("/:id/status", withdrawalHandler.UpdateWithdrawalStatus)
		}

		v1.GET("/invoices", withdrawalHandler.ListInvoices)
	}

	// 令牌视图，免认证
	r.GET("/a/:token", publicHandler.AuditView)
	r.GET("/p/:token", publicHandler.PayoutView)

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-User-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
