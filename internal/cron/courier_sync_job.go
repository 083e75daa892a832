package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
)

const defaultSyncBatchSize = 200

// CourierSyncJobParams configure the courier status sync job.
type CourierSyncJobParams struct {
	Logger     *logger.Logger
	Orders     openConsignmentLister
	Reconciler orderReconciler
	BatchSize  int
}

type openConsignmentLister interface {
	FindOpenConsignments(ctx context.Context, limit int) ([]models.Order, error)
}

type orderReconciler interface {
	Reconcile(ctx context.Context, orderID uuid.UUID) (*courier.SyncResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewCourierSyncJob builds the job that reconciles every open consignment
// against the courier provider.
func NewCourierSyncJob(params CourierSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order lister required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSyncBatchSize
	}
	return &courierSyncJob{
		logg:       params.Logger,
		orders:     params.Orders,
		reconciler: params.Reconciler,
		batch:      batch,
	}, nil
}

type courierSyncJob struct {
	logg       *logger.Logger
	orders     openConsignmentLister
	reconciler orderReconciler
	batch      int
}

func (j *courierSyncJob) Name() string { return "courier-status-sync" }

// Run reconciles each open consignment independently. A provider failure on
// one order never blocks the rest of the batch.
func (j *courierSyncJob) Run(ctx context.Context) error {
	open, err := j.orders.FindOpenConsignments(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list open consignments: %w", err)
	}

	var failed, advanced int
	for i := range open {
		order := open[i]
		result, err := j.reconciler.Reconcile(ctx, order.ID)
		if err != nil {
			failed++
			j.logg.Error(j.logg.WithField(ctx, "order_number", order.OrderNumber), "courier sync failed", err)
			continue
		}
		if result.Changed {
			advanced++
		}
	}

	summary := j.logg.WithFields(ctx, map[string]any{
		"scanned":  len(open),
		"advanced": advanced,
		"failed":   failed,
	})
	j.logg.Info(summary, "courier sync pass finished")

	if failed > 0 && failed == len(open) {
		return fmt.Errorf("courier sync: all %d reconciles failed", failed)
	}
	return nil
}
