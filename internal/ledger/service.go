package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

// EntryInput is a caller-supplied ledger mutation.
type EntryInput struct {
	Type    enums.TransactionType
	Amount  decimal.Decimal
	Brand   string
	Note    *string
	OrderID *uuid.UUID
}

// Balance summarizes a brand's financial position.
type Balance struct {
	Brand   string
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// Service maintains the per-brand income/expense ledger.
type Service struct {
	repo   *Repository
	brands *brands.Registry
}

// NewService constructs the ledger service.
func NewService(repo *Repository, registry *brands.Registry) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "brand registry required")
	}
	return &Service{repo: repo, brands: registry}, nil
}

// WithTx returns a service whose repository is bound to the transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{repo: s.repo.WithTx(tx), brands: s.brands}
}

// Record validates and persists a ledger entry.
func (s *Service) Record(ctx context.Context, input EntryInput) (*models.Transaction, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	if !s.brands.IsValid(input.Brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}

	entry, err := s.repo.Create(ctx, &models.Transaction{
		Type:    input.Type,
		Amount:  input.Amount,
		Brand:   input.Brand,
		Note:    input.Note,
		OrderID: input.OrderID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transaction")
	}
	return entry, nil
}

// List returns recent entries for the brand.
func (s *Service) List(ctx context.Context, brand string, limit int) ([]models.Transaction, error) {
	if !s.brands.IsValid(brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	rows, err := s.repo.ListByBrand(ctx, brand, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list transactions")
	}
	return rows, nil
}

// BalanceFor computes the brand's income, expense, and net totals.
func (s *Service) BalanceFor(ctx context.Context, brand string) (*Balance, error) {
	if !s.brands.IsValid(brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}

	income, err := s.repo.SumByType(ctx, brand, enums.TransactionTypeIncome)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum income")
	}
	expense, err := s.repo.SumByType(ctx, brand, enums.TransactionTypeExpense)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum expense")
	}

	return &Balance{
		Brand:   brand,
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}, nil
}
