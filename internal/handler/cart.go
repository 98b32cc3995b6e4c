package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/currency"
)

type cartLineView struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartView struct {
	Lines    []cartLineView  `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Currency string          `json:"currency"`
}

func (h *Handler) viewCart(r *http.Request, lines []cart.Line) cartView {
	cur, rates := h.displayContext(r)

	view := cartView{Lines: make([]cartLineView, len(lines)), Currency: string(cur)}
	subtotal := decimal.Zero
	for i, l := range lines {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		view.Lines[i] = cartLineView{
			ProductID: l.ProductID,
			UnitPrice: currency.Display(l.UnitPrice, cur, rates),
			Quantity:  l.Quantity,
			LineTotal: currency.Display(lineTotal, cur, rates),
		}
	}
	view.Subtotal = currency.Display(subtotal, cur, rates)
	return view
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.carts.Get(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewCart(r, lines))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// addCartItem snapshots the current catalog price onto the line. Later price
// changes leave carted lines untouched.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	userID := currentUser(r.Context()).ID
	err = h.carts.AddLine(r.Context(), userID, cart.Line{
		ProductID: p.ID,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	lines, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.viewCart(r, lines))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	userID := currentUser(r.Context()).ID
	err := h.carts.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	lines, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.viewCart(r, lines))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r.Context()).ID
	err := h.carts.RemoveLine(r.Context(), userID, chi.URLParam(r, "productID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), currentUser(r.Context()).ID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
