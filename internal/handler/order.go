package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/order"
)

type orderItemView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type orderView struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyer_id"`
	Items           []orderItemView `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Currency        string          `json:"currency"`
	DisplayTotal    decimal.Decimal `json:"display_total"`
	DisplayCurrency string          `json:"display_currency"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
}

// viewOrder reports amounts in SAR and additionally converts the total to
// the order's display currency with the current rates.
func (h *Handler) viewOrder(r *http.Request, o order.Order) orderView {
	rates, err := h.rates.Get(r.Context())
	if err != nil {
		rates = currency.DefaultRates()
	}

	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}

	return orderView{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		Items:           items,
		Subtotal:        o.Subtotal.Round(2),
		ShippingFee:     o.ShippingFee.Round(2),
		Discount:        o.Discount.Round(2),
		Total:           o.Total.Round(2),
		CouponCode:      o.CouponCode,
		Currency:        string(currency.SAR),
		DisplayTotal:    currency.Display(o.Total, o.DisplayCurrency, rates),
		DisplayCurrency: string(o.DisplayCurrency),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
	}
}

func (h *Handler) viewOrders(r *http.Request, orders []order.Order) []orderView {
	views := make([]orderView, len(orders))
	for i, o := range orders {
		views[i] = h.viewOrder(r, o)
	}
	return views
}

func (h *Handler) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByBuyer(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewOrders(r, orders))
}

// getOwnOrder returns one of the buyer's orders. Another buyer's order id
// reads as not found rather than forbidden.
func (h *Handler) getOwnOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if o.BuyerID != currentUser(r.Context()).ID {
		respondError(w, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.viewOrder(r, *o))
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewOrders(r, orders))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewOrder(r, *o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
