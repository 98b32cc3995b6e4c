package handler

import (
	"net/http"

	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/currency"
)

type checkoutRequest struct {
	Address struct {
		RecipientName string `json:"recipient_name"`
		Phone         string `json:"phone"`
		City          string `json:"city"`
		Street        string `json:"street"`
	} `json:"address"`
	Payment struct {
		Method     string `json:"method"`
		CardNumber string `json:"card_number"`
		CardExpiry string `json:"card_expiry"`
		CardCVV    string `json:"card_cvv"`
	} `json:"payment"`
	ShippingOptionID string `json:"shipping_option_id"`
	CouponCode       string `json:"coupon_code"`
	DisplayCurrency  string `json:"display_currency"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), checkout.Request{
		BuyerID: currentUser(r.Context()).ID,
		Address: checkout.Address{
			RecipientName: req.Address.RecipientName,
			Phone:         req.Address.Phone,
			City:          req.Address.City,
			Street:        req.Address.Street,
		},
		Payment: checkout.Payment{
			Method:     req.Payment.Method,
			CardNumber: req.Payment.CardNumber,
			CardExpiry: req.Payment.CardExpiry,
			CardCVV:    req.Payment.CardCVV,
		},
		ShippingOptionID: req.ShippingOptionID,
		CouponCode:       req.CouponCode,
		DisplayCurrency:  currency.Currency(req.DisplayCurrency),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.viewOrder(r, *o))
}
