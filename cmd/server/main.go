package main

import (
	"log"
	"time"

	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/database"
	"github.com/blues/dls/internal/gateway"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/logic"
	"github.com/blues/dls/internal/router"
	"github.com/blues/dls/internal/task"
	"github.com/blues/dls/internal/token"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 初始化日志
	if err := setupLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化支付网关客户端
	gwClient, err := gateway.Init(cfg.Payment)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway client: %v", err)
	}

	// 令牌组件
	auditSigner := token.NewAuditSigner(cfg.Token.AuditSecret)
	webhookVerifier := token.NewWebhookVerifier(cfg.Payment.WebhookSecret,
		time.Duration(cfg.Payment.WebhookTolerance)*time.Second)

	// 业务逻辑
	feePolicy := logic.NewFeePolicy(cfg.Fee)
	balanceLogic := logic.NewBalanceLogic(db, feePolicy)
	contributionLogic := logic.NewContributionLogic(db, gwClient, cfg.Withdraw)
	reconcileLogic := logic.NewReconcileLogic(db, gwClient, webhookVerifier)
	withdrawalLogic := logic.NewWithdrawalLogic(db, feePolicy, balanceLogic, cfg.Withdraw, cfg.Token)
	auditLogic := logic.NewAuditLogic(db, auditSigner, cfg.Token)
	payoutLogic := logic.NewPayoutLogic(db)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(router.Deps{
		ContributionLogic: contributionLogic,
		ReconcileLogic:    reconcileLogic,
		BalanceLogic:      balanceLogic,
		WithdrawalLogic:   withdrawalLogic,
		AuditLogic:        auditLogic,
		PayoutLogic:       payoutLogic,
	})

	// 启动定时任务
	task.Start(db, reconcileLogic, cfg)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupLogger 按配置切换控制台/文件输出
func setupLogger(cfg config.LogConfig) error {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.UseFile() {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		return err
	}
	logger.SetDefaultLogger(l)
	return nil
}
