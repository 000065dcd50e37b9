package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type ErrorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	MaxAddable  *int   `json:"max_addable,omitempty"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
	Remaining   *int   `json:"remaining,omitempty"`
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fullCart  *domain.CartFullError
		fullSlot  *domain.FullyBookedError
		declined  *domain.PaymentDeclinedError
		reconcile *domain.FatalReconciliationRequiredError
	)

	switch {
	case errors.As(err, &fullCart):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:       err.Error(),
			Code:        "cart_full",
			MaxAddable:  &fullCart.MaxAddable,
			MaxQuantity: &fullCart.MaxQuantity,
		})
	case errors.As(err, &fullSlot):
		remaining := fullSlot.Remaining()
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:     err.Error(),
			Code:      "fully_booked",
			Remaining: &remaining,
		})
	case errors.As(err, &declined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", "payment declined: "+declined.Reason)
	case errors.As(err, &reconcile):
		h.logger.ErrorContext(r.Context(), "checkout needs reconciliation", "attempt_id", reconcile.AttemptID, "error", err)
		respondError(w, http.StatusInternalServerError, "reconciliation_required",
			"payment was captured but the order could not be saved; support has been notified")
	case errors.Is(err, domain.ErrUnknownProduct):
		respondError(w, http.StatusBadRequest, "unknown_product", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, domain.ErrInvalidPickupDay):
		respondError(w, http.StatusUnprocessableEntity, "invalid_pickup_day", err.Error())
	case errors.Is(err, domain.ErrInsufficientLeadTime):
		respondError(w, http.StatusUnprocessableEntity, "insufficient_lead_time", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrCartAlreadyCheckedOut):
		respondError(w, http.StatusConflict, "already_checked_out", err.Error())
	case errors.Is(err, domain.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, domain.ErrCartNotFound), errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrSlotNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
