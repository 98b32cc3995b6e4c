package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/currency"
)

type shippingOptionView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	FlatFee       decimal.Decimal `json:"flat_fee"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	EstimatedDays string          `json:"estimated_days"`
}

func (h *Handler) listShippingOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.shippings.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	cur, rates := h.displayContext(r)
	views := make([]shippingOptionView, len(opts))
	for i, o := range opts {
		views[i] = shippingOptionView{
			ID:            o.ID,
			Name:          o.Name,
			FlatFee:       currency.Display(o.FlatFee, cur, rates),
			Currency:      string(cur),
			Description:   o.Description,
			EstimatedDays: o.EstimatedDays,
		}
	}
	respondJSON(w, http.StatusOK, views)
}
