package task

import (
	"context"
	"sync"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/logic"
	"github.com/blues/dls/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// PaymentPollJob 支付对账轮询任务
// 回调可能丢失，周期性把滞留在PENDING的贡献拿去网关核对一遍；
// 走的是和手动刷新完全相同的对账入口，幂等
type PaymentPollJob struct {
	db        *gorm.DB
	config    *config.Config
	reconcile *logic.ReconcileLogic
}

// NewPaymentPollJob 创建支付对账轮询任务
func NewPaymentPollJob(db *gorm.DB, cfg *config.Config, reconcile *logic.ReconcileLogic) *PaymentPollJob {
	return &PaymentPollJob{
		db:        db,
		config:    cfg,
		reconcile: reconcile,
	}
}

// GetName 获取任务名称
func (j *PaymentPollJob) GetName() string {
	return "payment_status_poller"
}

// GetSchedule 获取调度配置
func (j *PaymentPollJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PaymentPollJob) Execute() {
	logger.Info("Starting payment reconcile poll task")

	// 只管创建超过一个轮询周期仍未有结论的贡献，新建的留给回调
	cutoff := time.Now().Add(-time.Duration(j.config.Task.Interval) * time.Second)

	var pending []model.Contribution
	err := j.db.Where("payment_status = ? AND created_at <= ?",
		model.PaymentStatusPending, cutoff).
		Limit(500).
		Find(&pending).Error
	if err != nil {
		logger.Error("Failed to fetch pending contributions: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	workers := j.config.Task.Workers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		logger.Error("Failed to create worker pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	reconciled := 0

	for _, contribution := range pending {
		intentId := contribution.PaymentIntentId
		if intentId == "" {
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			result, err := j.reconcile.Refresh(ctx, intentId)
			if err != nil {
				// 网关抖动下次周期再试
				if apperr.IsKind(err, apperr.KindGateway) {
					logger.Warn("Gateway unavailable while polling intent %s: %v", intentId, err)
				} else {
					logger.Error("Failed to reconcile intent %s: %v", intentId, err)
				}
				return
			}
			if result.Changed {
				mu.Lock()
				reconciled++
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			logger.Error("Failed to submit poll task for intent %s: %v", intentId, submitErr)
		}
	}

	wg.Wait()
	logger.Info("Payment reconcile poll task completed. Checked %d, reconciled %d", len(pending), reconciled)
}
