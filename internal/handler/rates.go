package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/currency"
)

type ratesView struct {
	USDDivisor    decimal.Decimal `json:"usd_divisor"`
	YERMultiplier decimal.Decimal `json:"yer_multiplier"`
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.Get(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratesView{
		USDDivisor:    rates.USDDivisor,
		YERMultiplier: rates.YERMultiplier,
	})
}

func (h *Handler) updateRates(w http.ResponseWriter, r *http.Request) {
	var req ratesView
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	rates := currency.Rates{
		USDDivisor:    req.USDDivisor,
		YERMultiplier: req.YERMultiplier,
	}
	if err := h.rates.Update(r.Context(), rates); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratesView{
		USDDivisor:    rates.USDDivisor,
		YERMultiplier: rates.YERMultiplier,
	})
}
