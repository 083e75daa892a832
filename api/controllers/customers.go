package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nazmulhossain/shopdesk-backend/api/responses"
	"github.com/nazmulhossain/shopdesk-backend/api/validators"
	"github.com/nazmulhossain/shopdesk-backend/internal/customers"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

type createCustomerRequest struct {
	Name    string  `json:"name" validate:"required"`
	Phone   string  `json:"phone" validate:"required"`
	Address *string `json:"address" validate:"omitempty"`
	Brand   string  `json:"brand" validate:"required"`
}

// CreateCustomer upserts a customer keyed by phone number.
func CreateCustomer(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var req createCustomerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !brandAllowed(r.Context(), req.Brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		customer, err := svc.Resolve(r.Context(), customers.Input{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
			Brand:   req.Brand,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// GetCustomer returns a single customer record.
func GetCustomer(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		customerID := strings.TrimSpace(chi.URLParam(r, "customerId"))
		if customerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required"))
			return
		}

		customer, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// ListCustomers returns the most recent customers for a brand.
func ListCustomers(svc *customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brand := strings.TrimSpace(r.URL.Query().Get("brand"))
		if brand != "" && !brandAllowed(r.Context(), brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		list, err := svc.List(r.Context(), brand, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
