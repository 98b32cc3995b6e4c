package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/favorites"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/product"
	"github.com/alhussam/store-api/internal/domain/shipping"
	"github.com/alhussam/store-api/internal/domain/user"
)

// errorResponse is the wire shape for every error.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Code: code, Message: message})
}

// respondDomainError maps domain errors to HTTP responses. Unmapped errors
// are logged and become a generic 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())

	case errors.Is(err, coupon.ErrInvalidCode),
		errors.Is(err, coupon.ErrExpired):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, coupon.ErrDuplicateCode):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, currency.ErrUnknownCurrency),
		errors.Is(err, currency.ErrInvalidRate),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidRating),
		errors.Is(err, order.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, user.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, shipping.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, favorites.ErrNotFavorite):
		respondError(w, http.StatusNotFound, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
