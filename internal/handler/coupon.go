package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alhussam/store-api/internal/domain/coupon"
)

type couponView struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Active          bool            `json:"active"`
	UsageCount      int             `json:"usage_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

func viewCoupon(c coupon.Coupon) couponView {
	v := couponView{
		ID:              c.ID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Active:          c.Active,
		UsageCount:      c.UsageCount,
		CreatedAt:       c.CreatedAt,
	}
	if !c.ExpiresAt.IsZero() {
		expires := c.ExpiresAt
		v.ExpiresAt = &expires
	}
	return v
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]couponView, len(coupons))
	for i, c := range coupons {
		views[i] = viewCoupon(c)
	}
	respondJSON(w, http.StatusOK, views)
}

type couponRequest struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	Active          *bool           `json:"active"`
}

func (req couponRequest) valid() bool {
	return coupon.Normalize(req.Code) != "" &&
		req.DiscountPercent.IsPositive() &&
		req.DiscountPercent.LessThanOrEqual(decimal.NewFromInt(100))
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.valid() {
		respondError(w, http.StatusBadRequest, "code and a discount percent in (0, 100] are required")
		return
	}

	c := &coupon.Coupon{
		ID:              uuid.New().String(),
		Code:            coupon.Normalize(req.Code),
		DiscountPercent: req.DiscountPercent,
		Active:          true,
		CreatedAt:       time.Now(),
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = *req.ExpiresAt
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.coupons.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewCoupon(*c))
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.valid() {
		respondError(w, http.StatusBadRequest, "code and a discount percent in (0, 100] are required")
		return
	}

	c := &coupon.Coupon{
		ID:              chi.URLParam(r, "id"),
		Code:            coupon.Normalize(req.Code),
		DiscountPercent: req.DiscountPercent,
		Active:          req.Active == nil || *req.Active,
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = *req.ExpiresAt
	}

	if err := h.coupons.Update(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}

	// The update leaves usage_count and created_at untouched; read the row
	// back so the response reports them.
	updated, err := h.coupons.FindByCode(r.Context(), c.Code)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewCoupon(*updated))
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

// validateCoupon previews a redemption without incrementing usage.
func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	c, err := h.evaluator.Redeem(r.Context(), req.Code)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewCoupon(*c))
}
