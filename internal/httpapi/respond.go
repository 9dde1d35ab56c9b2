package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pizzeria-be/internal/address"
	"pizzeria-be/internal/auth"
	"pizzeria-be/internal/cart"
	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/order"
	"pizzeria-be/internal/pricing"
	"pizzeria-be/internal/promotion"
	"pizzeria-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 * 1024

var errBadRequest = errors.New("malformed request body")

type errorStatus struct {
	err    error
	status int
}

// errorStatuses is checked in order with errors.Is; the first match wins.
var errorStatuses = []errorStatus{
	{errBadRequest, http.StatusBadRequest},

	// -- Auth --
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrNotConfigured, http.StatusServiceUnavailable},

	// -- Validation & Input --
	{catalog.ErrInvalidName, http.StatusBadRequest},
	{catalog.ErrInvalidPrice, http.StatusBadRequest},
	{catalog.ErrCategoryRequired, http.StatusBadRequest},
	{catalog.ErrInvalidModifierKind, http.StatusBadRequest},
	{promotion.ErrInvalidCode, http.StatusBadRequest},
	{promotion.ErrInvalidKind, http.StatusBadRequest},
	{promotion.ErrInvalidValue, http.StatusBadRequest},
	{promotion.ErrPercentOutOfRange, http.StatusBadRequest},
	{promotion.ErrInvalidMinimum, http.StatusBadRequest},
	{customer.ErrInvalidPhone, http.StatusBadRequest},
	{cart.ErrEmptySession, http.StatusBadRequest},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrHalfNotAllowed, http.StatusBadRequest},
	{cart.ErrWrongModifierKind, http.StatusBadRequest},
	{cart.ErrInvalidFulfillment, http.StatusBadRequest},
	{cart.ErrPhoneRequired, http.StatusBadRequest},
	{order.ErrNameRequired, http.StatusBadRequest},
	{order.ErrAddressRequired, http.StatusBadRequest},
	{order.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{order.ErrInsufficientChange, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{address.ErrInvalidPostalCode, http.StatusBadRequest},

	// -- Business rules --
	{pricing.ErrInvalidCoupon, http.StatusUnprocessableEntity},
	{pricing.ErrGiftNotEligible, http.StatusUnprocessableEntity},
	{promotion.ErrUnknownGift, http.StatusUnprocessableEntity},
	{order.ErrEmptyCart, http.StatusUnprocessableEntity},
	{order.ErrCashbackPhoneChanged, http.StatusUnprocessableEntity},

	// -- Resource State --
	{catalog.ErrProductNotFound, http.StatusNotFound},
	{catalog.ErrCategoryNotFound, http.StatusNotFound},
	{catalog.ErrModifierNotFound, http.StatusNotFound},
	{promotion.ErrCouponNotFound, http.StatusNotFound},
	{customer.ErrCustomerNotFound, http.StatusNotFound},
	{cart.ErrProductNotFound, http.StatusNotFound},
	{cart.ErrModifierNotFound, http.StatusNotFound},
	{cart.ErrCartItemNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{address.ErrPostalCodeNotFound, http.StatusNotFound},
	{catalog.ErrCategoryExists, http.StatusConflict},
	{promotion.ErrCouponExists, http.StatusConflict},
	{customer.ErrNegativeBalance, http.StatusConflict},
	{cart.ErrProductUnavailable, http.StatusConflict},
	{cart.ErrGiftItemLocked, http.StatusConflict},
	{order.ErrCartChanged, http.StatusConflict},
	{order.ErrInsufficientCashback, http.StatusConflict},
	{order.ErrInvalidTransition, http.StatusConflict},
	{order.ErrStatusConflict, http.StatusConflict},

	// -- External Systems --
	{address.ErrLookupUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors to a status code. Unknown errors are logged
// and hidden behind a generic message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(ctx).Error("request failed", zap.Error(err))
		utils.WriteJSONError(w, logger.RequestIDFrom(ctx), "internal server error", status)
		return
	}
	utils.WriteJSONError(w, logger.RequestIDFrom(ctx), err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}

func sessionID(r *http.Request) (string, error) {
	id, ok := utils.SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		return "", cart.ErrEmptySession
	}
	return id, nil
}
