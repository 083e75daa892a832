package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/api/responses"
	"github.com/nazmulhossain/shopdesk-backend/api/validators"
	"github.com/nazmulhossain/shopdesk-backend/internal/products"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

type createProductRequest struct {
	SKU          string          `json:"sku" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	InitialStock int             `json:"initial_stock" validate:"min=0"`
	Brand        string          `json:"brand" validate:"required"`
	Tags         []string        `json:"tags,omitempty" validate:"omitempty,dive,required"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	SKU       *string          `json:"sku,omitempty"`
	Title     *string          `json:"title,omitempty"`
	BuyPrice  *decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice *decimal.Decimal `json:"sell_price,omitempty"`
	Brand     *string          `json:"brand,omitempty"`
	Tags      *[]string        `json:"tags,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

// CreateProduct registers a catalog item with its opening stock.
func CreateProduct(svc *products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !brandAllowed(r.Context(), payload.Brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		product, err := svc.Create(r.Context(), actorIDFromContext(r.Context()), products.CreateInput{
			SKU:          validators.SanitizeString(payload.SKU, 64),
			Title:        validators.SanitizeString(payload.Title, 255),
			BuyPrice:     payload.BuyPrice,
			SellPrice:    payload.SellPrice,
			InitialStock: payload.InitialStock,
			Brand:        payload.Brand,
			Tags:         payload.Tags,
			IsActive:     isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial catalog mutation. Stock is not editable
// here; it only moves through orders.
func UpdateProduct(svc *products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Brand != nil && !brandAllowed(r.Context(), *payload.Brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		product, err := svc.Update(r.Context(), actorIDFromContext(r.Context()), productID, products.UpdateInput{
			SKU:       payload.SKU,
			Title:     payload.Title,
			BuyPrice:  payload.BuyPrice,
			SellPrice: payload.SellPrice,
			Brand:     payload.Brand,
			Tags:      payload.Tags,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct soft-deletes a catalog item.
func DeleteProduct(svc *products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorIDFromContext(r.Context()), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetProduct returns a single catalog item.
func GetProduct(svc *products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns a filtered, cursor-paged catalog listing.
func ListProducts(svc *products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
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

		list, err := svc.List(r.Context(), products.ListInput{
			Brand:      brand,
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			ActiveOnly: r.URL.Query().Get("active") == "true",
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parseUUIDField(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
