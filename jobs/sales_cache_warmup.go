package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-restlets/internal/jobs"
)

// SalesCacheRefresher reloads the open order cache. *sales.Service satisfies it.
type SalesCacheRefresher interface {
	RefreshOpen(ctx context.Context) (int, error)
}

// SalesCacheWarmupJob keeps the open sales order cache hot between requests.
type SalesCacheWarmupJob struct {
	Sales   SalesCacheRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewSalesCacheWarmupJob wires dependencies for the warmup handler.
func NewSalesCacheWarmupJob(sales SalesCacheRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *SalesCacheWarmupJob {
	return &SalesCacheWarmupJob{Sales: sales, Logger: logger, Metrics: metrics, Timeout: 20 * time.Second}
}

// Handle processes TaskSalesCacheWarmup tasks.
func (j *SalesCacheWarmupJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Sales == nil {
		return errors.New("sales cache warmup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskSalesCacheWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	count, err := j.Sales.RefreshOpen(ctx)
	if err != nil {
		j.logger().Error("refresh open sales orders", slog.Any("error", err))
		return err
	}
	j.Metrics.AddProcessed(TaskSalesCacheWarmup, count)
	j.logger().Info("completed sales cache warmup", slog.Int("orders", count), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *SalesCacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
