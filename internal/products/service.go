package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/internal/audit"
	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	SKU          string
	Title        string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	InitialStock int
	Brand        string
	Tags         []string
	IsActive     bool
}

// UpdateInput holds optional mutation values for a product. Stock is absent
// on purpose: it moves only through the stock ledger.
type UpdateInput struct {
	SKU       *string
	Title     *string
	BuyPrice  *decimal.Decimal
	SellPrice *decimal.Decimal
	Brand     *string
	Tags      *[]string
	IsActive  *bool
}

// ListInput narrows and pages the catalog listing.
type ListInput struct {
	Brand      string
	Query      string
	ActiveOnly bool
	Pagination pagination.Params
}

// Service exposes catalog management operations.
type Service struct {
	repo    *Repository
	brands  *brands.Registry
	auditor *audit.Recorder
}

// NewService constructs the catalog service.
func NewService(repo *Repository, registry *brands.Registry, auditor *audit.Recorder) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "brand registry required")
	}
	return &Service{repo: repo, brands: registry, auditor: auditor}, nil
}

// Create validates and inserts a catalog entry.
func (s *Service) Create(ctx context.Context, actorID *uuid.UUID, input CreateInput) (*models.Product, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindBySKU(ctx, input.SKU)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product by sku")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}

	created, err := s.repo.Create(ctx, &models.Product{
		SKU:       strings.TrimSpace(input.SKU),
		Title:     strings.TrimSpace(input.Title),
		BuyPrice:  input.BuyPrice,
		SellPrice: input.SellPrice,
		Stock:     input.InitialStock,
		Brand:     input.Brand,
		Tags:      pq.StringArray(input.Tags),
		IsActive:  input.IsActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       enums.AuditActionCreate,
		ResourceType: "product",
		ResourceID:   created.ID.String(),
		Description:  "product created",
		After:        created,
	})
	return created, nil
}

// Update applies the provided fields to the product.
func (s *Service) Update(ctx context.Context, actorID *uuid.UUID, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *product

	if input.SKU != nil {
		trimmed := strings.TrimSpace(*input.SKU)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		if trimmed != product.SKU {
			dup, err := s.repo.FindBySKU(ctx, trimmed)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product by sku")
			}
			if dup != nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
			}
		}
		product.SKU = trimmed
	}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		product.Title = trimmed
	}
	if input.BuyPrice != nil {
		if input.BuyPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "buy price cannot be negative")
		}
		product.BuyPrice = *input.BuyPrice
	}
	if input.SellPrice != nil {
		if input.SellPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell price cannot be negative")
		}
		product.SellPrice = *input.SellPrice
	}
	if input.Brand != nil {
		if !s.brands.IsValid(*input.Brand) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
		}
		product.Brand = *input.Brand
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(*input.Tags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       enums.AuditActionUpdate,
		ResourceType: "product",
		ResourceID:   updated.ID.String(),
		Description:  "product updated",
		Before:       before,
		After:        updated,
	})
	return updated, nil
}

// Delete soft-deletes the product.
func (s *Service) Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}

	s.auditor.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       enums.AuditActionDelete,
		ResourceType: "product",
		ResourceID:   id.String(),
		Description:  "product deleted",
	})
	return nil
}

// Get loads a product or reports NotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.get(ctx, id)
}

// List pages the catalog.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Brand != "" && !s.brands.IsValid(input.Brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	result, err := s.repo.List(ctx, input.Pagination, Filters{
		Brand:      input.Brand,
		Query:      input.Query,
		ActiveOnly: input.ActiveOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return result, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find product")
	}
	return product, nil
}

func (s *Service) validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.BuyPrice.IsNegative() || input.SellPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.InitialStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	if !s.brands.IsValid(input.Brand) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	return nil
}
