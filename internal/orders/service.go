package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/internal/audit"
	"github.com/nazmulhossain/shopdesk-backend/internal/customers"
	"github.com/nazmulhossain/shopdesk-backend/internal/pricing"
	"github.com/nazmulhossain/shopdesk-backend/internal/products"
	"github.com/nazmulhossain/shopdesk-backend/internal/stock"
	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox/payloads"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

// Service orchestrates order creation, editing, and cancellation. It is the
// only writer of order totals and the only caller of the stock ledger.
type Service struct {
	db        *db.Client
	repo      *Repository
	products  *products.Repository
	customers *customers.Service
	stock     *stock.Ledger
	events    *outbox.Service
	auditor   *audit.Recorder
	brands    *brands.Registry
	logg      *logger.Logger
}

// NewService wires the order lifecycle service.
func NewService(
	dbClient *db.Client,
	repo *Repository,
	productRepo *products.Repository,
	customerSvc *customers.Service,
	ledger *stock.Ledger,
	events *outbox.Service,
	auditor *audit.Recorder,
	registry *brands.Registry,
	logg *logger.Logger,
) (*Service, error) {
	if dbClient == nil || repo == nil || productRepo == nil || customerSvc == nil ||
		ledger == nil || events == nil || registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service missing dependency")
	}
	return &Service{
		db:        dbClient,
		repo:      repo,
		products:  productRepo,
		customers: customerSvc,
		stock:     ledger,
		events:    events,
		auditor:   auditor,
		brands:    registry,
		logg:      logg,
	}, nil
}

// Create places a new order. Stock is debited item by item with compensation
// before anything is persisted; the order row, its items, the customer, the
// order number, and the outbox event then commit in one transaction. A failed
// commit reverses the stock debit.
func (s *Service) Create(ctx context.Context, actor *outbox.ActorRef, input CreateInput) (*models.Order, error) {
	method, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	lines, deltas, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	totals, err := pricing.ComputeTotals(lines, input.CourierCharge, input.PaidAmount)
	if err != nil {
		return nil, err
	}

	if err := s.stock.ApplyBatch(ctx, deltas); err != nil {
		return nil, err
	}

	var created *models.Order
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.WithTx(tx).Resolve(ctx, customers.Input{
			Name:    input.Customer.Name,
			Phone:   input.Customer.Phone,
			Address: optionalString(input.Customer.Address),
			Brand:   input.Brand,
		})
		if err != nil {
			return err
		}

		number, err := nextOrderNumber(tx)
		if err != nil {
			return fmt.Errorf("order number: %w", err)
		}

		order := &models.Order{
			OrderNumber:    number,
			CustomerID:     customer.ID,
			Items:          buildItems(lines),
			Subtotal:       totals.Subtotal,
			CourierCharge:  totals.CourierCharge,
			TotalAmount:    totals.TotalAmount,
			PaidAmount:     totals.PaidAmount,
			DueAmount:      totals.DueAmount,
			PaymentStatus:  totals.PaymentStatus,
			DeliveryMethod: method,
			Status:         enums.OrderStatusPending,
			Brand:          input.Brand,
			Notes:          input.Notes,
		}
		created, err = s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return fmt.Errorf("db: insert order: %w", err)
		}

		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:     created.ID,
				OrderNumber: created.OrderNumber,
				Brand:       created.Brand,
				CustomerID:  created.CustomerID,
				TotalAmount: created.TotalAmount,
				DueAmount:   created.DueAmount,
				ItemCount:   len(created.Items),
				Payment:     created.PaymentStatus,
			},
		})
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		s.auditor.WithTx(tx).Record(ctx, audit.Entry{
			ActorID:      actorID(actor),
			Action:       enums.AuditActionCreate,
			ResourceType: "order",
			ResourceID:   created.ID.String(),
			Description:  "order " + created.OrderNumber + " created",
			After:        created,
		})
		return nil
	})
	if txErr != nil {
		if compErr := s.stock.Compensate(ctx, deltas); compErr != nil {
			s.logError(ctx, "stock compensation after failed order create", compErr)
		}
		return nil, wrapTxErr(txErr)
	}
	return created, nil
}

// Edit mutates an order in place. Terminal orders are rejected: a cancelled
// order has already restored its stock and a delivered one is settled.
// Supplying a new item set releases the old allocation before debiting the
// new one; a debit failure leaves stock in the released state. Courier fields
// are never touched here.
func (s *Service) Edit(ctx context.Context, actor *outbox.ActorRef, id uuid.UUID, input EditInput) (*models.Order, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be edited in status "+order.Status.String())
	}
	before := *order

	if input.DeliveryMethod != nil {
		method, err := enums.ParseDeliveryMethod(*input.DeliveryMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
		}
		order.DeliveryMethod = method
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}

	courierCharge := order.CourierCharge
	if input.CourierCharge != nil {
		courierCharge = *input.CourierCharge
	}
	paidAmount := order.PaidAmount
	if input.PaidAmount != nil {
		paidAmount = *input.PaidAmount
	}

	lines := linesFromItems(order.Items)
	var newDeltas []stock.Delta

	if input.Items != nil {
		restore := make([]stock.Delta, 0, len(order.Items))
		for _, item := range order.Items {
			restore = append(restore, stock.Delta{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		for _, delta := range restore {
			if err := s.stock.ApplyDelta(ctx, delta); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock for edit")
			}
		}

		lines, newDeltas, err = s.resolveItems(ctx, *input.Items)
		if err != nil {
			return nil, err
		}
		if err := s.stock.ApplyBatch(ctx, newDeltas); err != nil {
			return nil, err
		}
	}

	totals, err := pricing.ComputeTotals(lines, courierCharge, paidAmount)
	if err != nil {
		if input.Items != nil {
			if compErr := s.stock.Compensate(ctx, newDeltas); compErr != nil {
				s.logError(ctx, "stock compensation after failed repricing", compErr)
			}
		}
		return nil, err
	}
	order.Subtotal = totals.Subtotal
	order.CourierCharge = totals.CourierCharge
	order.TotalAmount = totals.TotalAmount
	order.PaidAmount = totals.PaidAmount
	order.DueAmount = totals.DueAmount
	order.PaymentStatus = totals.PaymentStatus

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.Items != nil {
			if err := repo.ReplaceItems(ctx, order.ID, buildItems(lines)); err != nil {
				return fmt.Errorf("db: replace items: %w", err)
			}
		}
		if err := repo.Update(ctx, order); err != nil {
			return fmt.Errorf("db: update order: %w", err)
		}

		err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderUpdatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Brand:       order.Brand,
				TotalAmount: order.TotalAmount,
				DueAmount:   order.DueAmount,
				Payment:     order.PaymentStatus,
			},
		})
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		s.auditor.WithTx(tx).Record(ctx, audit.Entry{
			ActorID:      actorID(actor),
			Action:       enums.AuditActionUpdate,
			ResourceType: "order",
			ResourceID:   order.ID.String(),
			Description:  "order " + order.OrderNumber + " edited",
			Before:       before,
			After:        order,
		})
		return nil
	})
	if txErr != nil {
		if input.Items != nil {
			if compErr := s.stock.Compensate(ctx, newDeltas); compErr != nil {
				s.logError(ctx, "stock compensation after failed order edit", compErr)
			}
		}
		return nil, wrapTxErr(txErr)
	}
	return s.get(ctx, id)
}

// Cancel moves the order to cancelled and restores its stock allocation.
func (s *Service) Cancel(ctx context.Context, actor *outbox.ActorRef, id uuid.UUID, reason string) (*models.Order, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanAdvanceTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled from status "+order.Status.String())
	}

	for _, item := range order.Items {
		if err := s.stock.ApplyDelta(ctx, stock.Delta{ProductID: item.ProductID, Quantity: item.Quantity}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock for cancel")
		}
	}

	from := order.Status
	order.Status = enums.OrderStatusCancelled

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, order); err != nil {
			return fmt.Errorf("db: update order: %w", err)
		}
		err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Brand:       order.Brand,
				Reason:      reason,
				CancelledAt: time.Now().UTC(),
			},
		})
		if err != nil {
			return fmt.Errorf("outbox: %w", err)
		}

		s.auditor.WithTx(tx).Record(ctx, audit.Entry{
			ActorID:      actorID(actor),
			Action:       enums.AuditActionUpdate,
			ResourceType: "order",
			ResourceID:   order.ID.String(),
			Description:  "order " + order.OrderNumber + " cancelled (was " + from.String() + ")",
		})
		return nil
	})
	if txErr != nil {
		return nil, wrapTxErr(txErr)
	}
	return order, nil
}

// Get loads an order or reports NotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.get(ctx, id)
}

// List pages orders filtered by brand and status.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Brand != "" && !s.brands.IsValid(input.Brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	if input.Status != "" {
		if _, err := enums.ParseOrderStatus(input.Status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
		}
	}
	result, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, Filters{
		Brand:  input.Brand,
		Status: input.Status,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return result, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find order")
	}
	return order, nil
}

func (s *Service) validateCreate(input CreateInput) (enums.DeliveryMethod, error) {
	if !s.brands.IsValid(input.Brand) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	method, err := enums.ParseDeliveryMethod(input.DeliveryMethod)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
	}
	if len(input.Items) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	return method, nil
}

// resolveItems snapshots catalog titles and prices for the requested lines
// and derives the stock debits.
func (s *Service) resolveItems(ctx context.Context, items []ItemInput) ([]pricing.LineItem, []stock.Delta, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve products")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	lines := make([]pricing.LineItem, 0, len(items))
	deltas := make([]stock.Delta, 0, len(items))
	for i, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("line %d: product not found", i+1))
		}
		if !product.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product is inactive", i+1))
		}
		price := product.SellPrice
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", i+1))
			}
			price = *item.UnitPrice
		}
		lines = append(lines, pricing.LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
		deltas = append(deltas, stock.Delta{ProductID: product.ID, Quantity: -item.Quantity})
	}
	return lines, deltas, nil
}

func buildItems(lines []pricing.LineItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
		})
	}
	return items
}

func linesFromItems(items []models.OrderItem) []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.LineItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func actorID(actor *outbox.ActorRef) *uuid.UUID {
	if actor == nil {
		return nil
	}
	id := actor.UserID
	return &id
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}

// wrapTxErr keeps coded errors intact and maps everything else to a
// dependency failure.
func wrapTxErr(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order transaction failed")
}
