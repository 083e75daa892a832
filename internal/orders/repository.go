package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

// Repository owns order rows and their item lines.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its items and customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Update persists order-level fields. Items are managed separately through
// ReplaceItems.
func (r *Repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"customer_id":        order.CustomerID,
			"subtotal":           order.Subtotal,
			"courier_charge":     order.CourierCharge,
			"total_amount":       order.TotalAmount,
			"paid_amount":        order.PaidAmount,
			"due_amount":         order.DueAmount,
			"payment_status":     order.PaymentStatus,
			"delivery_method":    order.DeliveryMethod,
			"status":             order.Status,
			"notes":              order.Notes,
			"consignment_id":     order.ConsignmentID,
			"courier_status":     order.CourierStatus,
			"courier_updated_at": order.CourierUpdatedAt,
			"delivery_fee":       order.DeliveryFee,
			"tracking_url":       order.TrackingURL,
		}).Error
}

// ReplaceItems deletes the order's current lines and inserts the new set.
func (r *Repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// Filters narrows the order listing.
type Filters struct {
	Brand  string
	Status string
}

// List returns a cursor page of orders, newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters Filters) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.Brand != "" {
		q = q.Where("brand = ?", filters.Brand)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &ListResult{Orders: rows, NextCursor: next}, nil
}

// FindOpenConsignments returns orders that were handed to the courier and
// have not reached a terminal status yet.
func (r *Repository) FindOpenConsignments(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("consignment_id IS NOT NULL").
		Where("status NOT IN ?", []string{"delivered", "cancelled"}).
		Order("courier_updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
