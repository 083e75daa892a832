package courier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
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
	"github.com/nazmulhossain/shopdesk-backend/pkg/pathao"
)

// Bridge hands orders to the courier provider and records the consignment.
// Stock is already committed by the time an order reaches the bridge; a
// provider failure never touches inventory.
type Bridge struct {
	db       *db.Client
	orders   *orders.Repository
	provider Provider
	events   *outbox.Service
	auditor  *audit.Recorder
	metrics  *metrics.CourierMetrics
	logg     *logger.Logger
}

// NewBridge wires the courier bridge.
func NewBridge(
	dbClient *db.Client,
	orderRepo *orders.Repository,
	provider Provider,
	events *outbox.Service,
	auditor *audit.Recorder,
	courierMetrics *metrics.CourierMetrics,
	logg *logger.Logger,
) (*Bridge, error) {
	if dbClient == nil || orderRepo == nil || provider == nil || events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "courier bridge missing dependency")
	}
	return &Bridge{
		db:       dbClient,
		orders:   orderRepo,
		provider: provider,
		events:   events,
		auditor:  auditor,
		metrics:  courierMetrics,
		logg:     logg,
	}, nil
}

// Send creates a consignment for the order. Fails fast with a conflict when
// the order was already sent or does not ship via the courier.
func (b *Bridge) Send(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID) (*models.Order, error) {
	order, err := b.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Sent() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already sent to courier").
			WithDetails(map[string]interface{}{"consignment_id": *order.ConsignmentID})
	}
	if order.DeliveryMethod != enums.DeliveryMethodPathao {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"order delivery method is "+order.DeliveryMethod.String()+", not "+enums.DeliveryMethodPathao.String())
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is "+order.Status.String())
	}
	if order.Customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order customer not loaded")
	}

	req, err := b.buildRequest(order)
	if err != nil {
		return nil, err
	}

	consignment, err := b.provider.CreateConsignment(ctx, order.Brand, req)
	if err != nil {
		b.countSend(order.Brand, "error")
		return nil, err
	}

	now := time.Now().UTC()
	order.ConsignmentID = &consignment.ConsignmentID
	status := consignment.Status
	order.CourierStatus = &status
	order.CourierUpdatedAt = &now
	fee := consignment.DeliveryFee
	order.DeliveryFee = &fee
	tracking := pathao.TrackingURL(consignment.ConsignmentID)
	order.TrackingURL = &tracking

	txErr := b.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := b.orders.WithTx(tx).Update(ctx, order); err != nil {
			return fmt.Errorf("db: store consignment: %w", err)
		}
		err := b.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderSentToCourier,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderSentToCourierEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Brand:         order.Brand,
				ConsignmentID: consignment.ConsignmentID,
				DeliveryFee:   consignment.DeliveryFee,
			},
		})
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		b.auditRecord(ctx, tx, actor, order, enums.AuditActionCourierSend,
			"order "+order.OrderNumber+" sent to courier as "+consignment.ConsignmentID)
		return nil
	})
	if txErr != nil {
		b.countSend(order.Brand, "error")
		// The consignment exists remotely but the local write failed. The
		// next send attempt will conflict on the provider side; operators
		// resolve via reconciliation.
		if b.logg != nil {
			b.logg.Error(ctx, "consignment created but not stored", txErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "store consignment")
	}

	b.countSend(order.Brand, "ok")
	return order, nil
}

func (b *Bridge) buildRequest(order *models.Order) (pathao.CreateOrderRequest, error) {
	storeID, err := b.provider.StoreID(order.Brand)
	if err != nil {
		return pathao.CreateOrderRequest{}, err
	}

	quantity := 0
	descriptions := ""
	for _, item := range order.Items {
		quantity += item.Quantity
		if descriptions != "" {
			descriptions += ", "
		}
		descriptions += fmt.Sprintf("%s x%d", item.Title, item.Quantity)
	}

	instruction := ""
	if order.Notes != nil {
		instruction = *order.Notes
	}
	address := ""
	if order.Customer.Address != nil {
		address = *order.Customer.Address
	}

	return pathao.CreateOrderRequest{
		StoreID:            storeID,
		MerchantOrderID:    order.OrderNumber,
		RecipientName:      order.Customer.Name,
		RecipientPhone:     order.Customer.Phone,
		RecipientAddress:   address,
		DeliveryType:       pathao.DeliveryTypeNormal,
		ItemType:           pathao.ItemTypeParcel,
		ItemQuantity:       quantity,
		ItemWeight:         "0.5",
		ItemDescription:    descriptions,
		AmountToCollect:    order.DueAmount,
		SpecialInstruction: instruction,
	}, nil
}

func (b *Bridge) find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := b.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find order")
	}
	return order, nil
}

func (b *Bridge) auditRecord(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, order *models.Order, action enums.AuditAction, description string) {
	if b.auditor == nil {
		return
	}
	var actorID *uuid.UUID
	if actor != nil {
		id := actor.UserID
		actorID = &id
	}
	b.auditor.WithTx(tx).Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       action,
		ResourceType: "order",
		ResourceID:   order.ID.String(),
		Description:  description,
	})
}

func (b *Bridge) countSend(brand, result string) {
	if b.metrics != nil {
		b.metrics.IncSend(brand, result)
	}
}
