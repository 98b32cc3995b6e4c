package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/product"
)

type productView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Description  string          `json:"description"`
	Images       []string        `json:"images"`
	Stock        int             `json:"stock"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
}

// displayContext resolves the ?currency= query and the stored rates. Unknown
// currencies and rate loading failures fall back to SAR identity so a read
// never fails on display concerns.
func (h *Handler) displayContext(r *http.Request) (currency.Currency, currency.Rates) {
	cur := currency.Currency(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency"))))
	if !cur.IsValid() {
		cur = currency.SAR
	}
	rates, err := h.rates.Get(r.Context())
	if err != nil {
		zctx.From(r.Context()).Warn("load rates", zap.Error(err))
		return currency.SAR, currency.DefaultRates()
	}
	return cur, rates
}

func viewProduct(p product.Product, cur currency.Currency, rates currency.Rates) productView {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Price:        currency.Display(p.Price, cur, rates),
		Currency:     string(cur),
		Category:     p.Category,
		Brand:        p.Brand,
		Description:  p.Description,
		Images:       images,
		Stock:        p.Stock,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	cur, rates := h.displayContext(r)
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = viewProduct(p, cur, rates)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	cur, rates := h.displayContext(r)
	respondJSON(w, http.StatusOK, viewProduct(*p, cur, rates))
}

type productRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Description  string          `json:"description"`
	Images       []string        `json:"images"`
	Stock        int             `json:"stock"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
}

func (req productRequest) toProduct() *product.Product {
	return &product.Product{
		ID:           req.ID,
		Name:         req.Name,
		Price:        req.Price,
		Category:     req.Category,
		Brand:        req.Brand,
		Description:  req.Description,
		Images:       req.Images,
		Stock:        req.Stock,
		Rating:       req.Rating,
		ReviewsCount: req.ReviewsCount,
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ID == "" || req.Name == "" || !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "id, name, and a positive price are required")
		return
	}

	p := req.toProduct()
	if err := h.products.Create(r.Context(), p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewProduct(*p, currency.SAR, currency.DefaultRates()))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	p := req.toProduct()
	if err := h.products.Update(r.Context(), p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewProduct(*p, currency.SAR, currency.DefaultRates()))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
