package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/api/responses"
	"github.com/nazmulhossain/shopdesk-backend/api/validators"
	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/internal/orders"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

type orderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid4"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type orderCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address,omitempty"`
}

type createOrderRequest struct {
	Customer       orderCustomerRequest `json:"customer" validate:"required"`
	Items          []orderItemRequest   `json:"items" validate:"required,min=1,dive"`
	CourierCharge  decimal.Decimal      `json:"courier_charge"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	DeliveryMethod string               `json:"delivery_method" validate:"required"`
	Brand          string               `json:"brand" validate:"required"`
	Notes          *string              `json:"notes,omitempty"`
}

type editOrderRequest struct {
	Items          *[]orderItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	CourierCharge  *decimal.Decimal    `json:"courier_charge,omitempty"`
	PaidAmount     *decimal.Decimal    `json:"paid_amount,omitempty"`
	DeliveryMethod *string             `json:"delivery_method,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

func itemInputs(items []orderItemRequest) ([]orders.ItemInput, error) {
	inputs := make([]orders.ItemInput, 0, len(items))
	for _, item := range items {
		productID, err := parseUUIDField(item.ProductID, "product_id")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, orders.ItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return inputs, nil
}

// CreateOrder prices the requested lines, debits stock, and records the order.
func CreateOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !brandAllowed(r.Context(), payload.Brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		items, err := itemInputs(payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), actorFromContext(r.Context()), orders.CreateInput{
			Customer: orders.CustomerInput{
				Name:    validators.SanitizeString(payload.Customer.Name, 255),
				Phone:   validators.SanitizeString(payload.Customer.Phone, 32),
				Address: validators.SanitizeString(payload.Customer.Address, 500),
			},
			Items:          items,
			CourierCharge:  payload.CourierCharge,
			PaidAmount:     payload.PaidAmount,
			DeliveryMethod: payload.DeliveryMethod,
			Brand:          payload.Brand,
			Notes:          payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// EditOrder replaces items and repricing fields on an open order.
func EditOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.EditInput{
			CourierCharge:  payload.CourierCharge,
			PaidAmount:     payload.PaidAmount,
			DeliveryMethod: payload.DeliveryMethod,
			Notes:          payload.Notes,
		}
		if payload.Items != nil {
			items, err := itemInputs(*payload.Items)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = &items
		}

		order, err := svc.Edit(r.Context(), actorFromContext(r.Context()), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CancelOrder cancels an open order and returns its stock.
func CancelOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Cancel(r.Context(), actorFromContext(r.Context()), orderID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// GetOrder returns a single order with lines and customer.
func GetOrder(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns a filtered, cursor-paged order listing.
func ListOrders(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
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

		list, err := svc.List(r.Context(), orders.ListInput{
			Brand:  brand,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SendToCourier books a consignment for the order with the courier.
func SendToCourier(bridge *courier.Bridge, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bridge == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier bridge unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := bridge.Send(r.Context(), actorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// SyncCourierStatus pulls the courier's view of the order and applies any
// resulting status transition.
func SyncCourierStatus(reconciler *courier.Reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reconciler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "courier reconciler unavailable"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := reconciler.Reconcile(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
