package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/api/responses"
	"github.com/nazmulhossain/shopdesk-backend/api/validators"
	"github.com/nazmulhossain/shopdesk-backend/internal/ledger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

type createTransactionRequest struct {
	Type    string          `json:"type" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Brand   string          `json:"brand" validate:"required"`
	Note    *string         `json:"note,omitempty"`
	OrderID *string         `json:"order_id,omitempty"`
}

// CreateTransaction records a manual income or expense entry.
func CreateTransaction(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !brandAllowed(r.Context(), payload.Brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		entryType, err := enums.ParseTransactionType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		var orderID *uuid.UUID
		if payload.OrderID != nil {
			parsed, err := parseUUIDField(*payload.OrderID, "order_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			orderID = &parsed
		}

		entry, err := svc.Record(r.Context(), ledger.EntryInput{
			Type:    entryType,
			Amount:  payload.Amount,
			Brand:   payload.Brand,
			Note:    payload.Note,
			OrderID: orderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// ListTransactions returns the most recent ledger entries for a brand.
func ListTransactions(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
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

// TransactionBalance summarizes income against expense for a brand.
func TransactionBalance(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		brand := strings.TrimSpace(r.URL.Query().Get("brand"))
		if brand == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "brand is required"))
			return
		}
		if !brandAllowed(r.Context(), brand) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "brand not permitted"))
			return
		}

		balance, err := svc.BalanceFor(r.Context(), brand)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}
