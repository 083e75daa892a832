package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
)

// Delta is a signed stock adjustment for one product. Negative quantities
// debit stock (a sale), positive quantities restore it.
type Delta struct {
	ProductID uuid.UUID
	Quantity  int
}

// Inverse returns the compensating delta.
func (d Delta) Inverse() Delta {
	return Delta{ProductID: d.ProductID, Quantity: -d.Quantity}
}

// InsufficientStockDetails names the offending product on an oversell attempt.
type InsufficientStockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Ledger is the only writer of product stock and sales counts.
type Ledger struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewLedger builds the ledger on top of the base connection.
func NewLedger(db *gorm.DB, logg *logger.Logger) *Ledger {
	return &Ledger{db: db, logg: logg}
}

// WithTx returns a ledger bound to the provided transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx, logg: l.logg}
}

// ApplyDelta atomically adjusts a single product's stock. A debit that would
// take stock below zero touches nothing and reports the available quantity.
// Sales count moves opposite to stock so restores unwind it.
func (l *Ledger) ApplyDelta(ctx context.Context, delta Delta) error {
	if delta.Quantity == 0 {
		return nil
	}

	res := l.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", delta.ProductID, delta.Quantity).
		Updates(map[string]any{
			"stock":       gorm.Expr("stock + ?", delta.Quantity),
			"sales_count": gorm.Expr("sales_count - ?", delta.Quantity),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: adjust stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// The guarded update matched nothing: either the product is gone or the
	// debit would oversell.
	var product models.Product
	err := l.db.WithContext(ctx).Select("id", "stock").First(&product, "id = ?", delta.ProductID).Error
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", delta.ProductID))
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product for stock check")
	}

	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product %s", delta.ProductID)).
		WithDetails(InsufficientStockDetails{
			ProductID: product.ID,
			Requested: -delta.Quantity,
			Available: product.Stock,
		})
}

// ApplyBatch applies each delta in order. If any delta fails, the already
// applied ones are compensated in reverse order and the original failure is
// returned. Compensation failures are aggregated onto the returned error.
func (l *Ledger) ApplyBatch(ctx context.Context, deltas []Delta) error {
	applied := make([]Delta, 0, len(deltas))
	for _, delta := range deltas {
		if err := l.ApplyDelta(ctx, delta); err != nil {
			return l.compensate(ctx, applied, err)
		}
		applied = append(applied, delta)
	}
	return nil
}

// Compensate reverses previously applied deltas, newest first.
func (l *Ledger) Compensate(ctx context.Context, applied []Delta) error {
	var errs error
	for i := len(applied) - 1; i >= 0; i-- {
		if err := l.ApplyDelta(ctx, applied[i].Inverse()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("compensate product %s: %w", applied[i].ProductID, err))
		}
	}
	return errs
}

func (l *Ledger) compensate(ctx context.Context, applied []Delta, cause error) error {
	compErr := l.Compensate(ctx, applied)
	if compErr == nil {
		return cause
	}
	if l.logg != nil {
		l.logg.Error(ctx, "stock compensation incomplete", compErr)
	}
	return multierr.Append(cause, compErr)
}
