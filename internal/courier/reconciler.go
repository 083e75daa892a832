package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/internal/audit"
	"github.com/nazmulhossain/shopdesk-backend/internal/orders"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/metrics"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox/payloads"
)

// SyncResult reports what a reconcile pass changed.
type SyncResult struct {
	Order         *models.Order
	CourierStatus string
	Changed       bool
}

// Reconciler pulls the courier's view of a consignment and folds it into the
// order. Status only ever advances: remote statuses that would move an order
// backwards, or out of a terminal state, refresh courier_status but leave the
// lifecycle alone.
type Reconciler struct {
	db       *db.Client
	orders   *orders.Repository
	provider Provider
	events   *outbox.Service
	auditor  *audit.Recorder
	metrics  *metrics.CourierMetrics
	logg     *logger.Logger
}

// NewReconciler wires the status reconciler.
func NewReconciler(
	dbClient *db.Client,
	orderRepo *orders.Repository,
	provider Provider,
	events *outbox.Service,
	auditor *audit.Recorder,
	courierMetrics *metrics.CourierMetrics,
	logg *logger.Logger,
) (*Reconciler, error) {
	if dbClient == nil || orderRepo == nil || provider == nil || events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler missing dependency")
	}
	return &Reconciler{
		db:       dbClient,
		orders:   orderRepo,
		provider: provider,
		events:   events,
		auditor:  auditor,
		metrics:  courierMetrics,
		logg:     logg,
	}, nil
}

// Reconcile fetches the remote status for the order's consignment and applies
// its effects. Idempotent: repeating a call with an unchanged remote status
// only refreshes courier_updated_at.
func (r *Reconciler) Reconcile(ctx context.Context, orderID uuid.UUID) (*SyncResult, error) {
	order, err := r.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find order")
	}
	return r.reconcile(ctx, order)
}

// ReconcileOrder applies a sync to an already-loaded order row.
func (r *Reconciler) ReconcileOrder(ctx context.Context, order *models.Order) (*SyncResult, error) {
	return r.reconcile(ctx, order)
}

func (r *Reconciler) reconcile(ctx context.Context, order *models.Order) (*SyncResult, error) {
	if !order.Sent() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no consignment")
	}

	remote, err := r.provider.GetStatus(ctx, order.Brand, *order.ConsignmentID)
	if err != nil {
		r.countSync(order.Brand, "error")
		return nil, err
	}

	now := time.Now().UTC()
	rawStatus := remote.Status
	from := order.Status
	target, deliver := mapRemoteStatus(rawStatus, order.Status)

	order.CourierStatus = &rawStatus
	order.CourierUpdatedAt = &now

	changed := false
	var settled decimal.Decimal
	if target != "" && order.Status.CanAdvanceTo(target) {
		order.Status = target
		changed = true
		if deliver && order.DueAmount.IsPositive() {
			settled = order.DueAmount
			order.PaidAmount = order.TotalAmount
			order.DueAmount = decimal.Zero
			order.PaymentStatus = enums.PaymentStatusPaid
		}
	}

	txErr := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.orders.WithTx(tx).Update(ctx, order); err != nil {
			return fmt.Errorf("db: update order: %w", err)
		}
		if !changed {
			return nil
		}

		err := r.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Brand:         order.Brand,
				From:          from,
				To:            order.Status,
				CourierStatus: rawStatus,
			},
		})
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		switch order.Status {
		case enums.OrderStatusDelivered:
			err = r.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderDelivered,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.OrderDeliveredEvent{
					OrderID:       order.ID,
					OrderNumber:   order.OrderNumber,
					Brand:         order.Brand,
					SettledAmount: settled,
					DeliveredAt:   now,
				},
			})
		case enums.OrderStatusCancelled:
			err = r.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCancelled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.OrderCancelledEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					Brand:       order.Brand,
					Reason:      "courier reported " + rawStatus,
					CancelledAt: now,
				},
			})
		}
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		if r.auditor != nil {
			r.auditor.WithTx(tx).Record(ctx, audit.Entry{
				Action:       enums.AuditActionCourierSync,
				ResourceType: "order",
				ResourceID:   order.ID.String(),
				Description:  "order " + order.OrderNumber + " moved " + from.String() + " to " + order.Status.String() + " from courier status " + rawStatus,
			})
		}
		return nil
	})
	if txErr != nil {
		r.countSync(order.Brand, "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "apply courier status")
	}

	r.countSync(order.Brand, "ok")
	if changed {
		if r.metrics != nil {
			r.metrics.IncTransition(from.String(), order.Status.String())
		}
		if r.logg != nil {
			r.logg.Info(r.logg.WithFields(ctx, map[string]interface{}{
				"order_number":   order.OrderNumber,
				"from":           from.String(),
				"to":             order.Status.String(),
				"courier_status": rawStatus,
			}), "order status advanced from courier sync")
		}
	}

	return &SyncResult{Order: order, CourierStatus: rawStatus, Changed: changed}, nil
}

// mapRemoteStatus translates the provider's status string into a lifecycle
// target. An empty target means no lifecycle effect. The second return marks
// a delivery, which settles any outstanding dues.
func mapRemoteStatus(remote string, current enums.OrderStatus) (enums.OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "delivered":
		return enums.OrderStatusDelivered, true
	case "cancelled", "canceled":
		return enums.OrderStatusCancelled, false
	case "picked", "shipped":
		if current == enums.OrderStatusProcessing {
			return enums.OrderStatusShipped, false
		}
		return "", false
	default:
		return "", false
	}
}

func (r *Reconciler) countSync(brand, result string) {
	if r.metrics != nil {
		r.metrics.IncSync(brand, result)
	}
}
