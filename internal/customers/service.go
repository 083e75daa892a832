package customers

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

// Input is the caller-supplied customer identity for order intake.
type Input struct {
	Name    string
	Phone   string
	Address *string
	Brand   string
}

// Service resolves customers by phone, creating them on first contact.
type Service struct {
	repo   *Repository
	brands *brands.Registry
}

// NewService constructs the customer directory service.
func NewService(repo *Repository, registry *brands.Registry) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer repository required")
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

// Resolve returns the customer for the phone number, creating the record when
// the phone is unknown. An existing customer's name and address are refreshed
// when the caller supplies new values.
func (s *Service) Resolve(ctx context.Context, input Input) (*models.Customer, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	if !s.brands.IsValid(input.Brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}

	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find customer by phone")
	}
	if existing != nil {
		changed := false
		if name := strings.TrimSpace(input.Name); name != "" && name != existing.Name {
			existing.Name = name
			changed = true
		}
		if input.Address != nil {
			existing.Address = input.Address
			changed = true
		}
		if !changed {
			return existing, nil
		}
		updated, err := s.repo.Update(ctx, existing)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
		}
		return updated, nil
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	created, err := s.repo.Create(ctx, &models.Customer{
		Name:    name,
		Phone:   phone,
		Address: input.Address,
		Brand:   input.Brand,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create customer")
	}
	return created, nil
}

// Get loads a customer or reports NotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Customer, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find customer")
	}
	return customer, nil
}

// List returns recent customers for the brand.
func (s *Service) List(ctx context.Context, brand string, limit int) ([]models.Customer, error) {
	if brand != "" && !s.brands.IsValid(brand) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	rows, err := s.repo.List(ctx, brand, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	return rows, nil
}
