package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alhussam/store-api/internal/domain/product"
)

type reviewView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func viewReview(rev product.Review) reviewView {
	return reviewView{
		ID:        rev.ID,
		Author:    rev.Author,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

func (h *Handler) listProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]reviewView, len(reviews))
	for i, rev := range reviews {
		views[i] = viewReview(rev)
	}
	respondJSON(w, http.StatusOK, views)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) addProductReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u := currentUser(r.Context())
	rev := product.Review{
		ID:        uuid.New().String(),
		ProductID: chi.URLParam(r, "id"),
		UserID:    u.ID,
		Author:    u.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	if err := h.reviews.Add(r.Context(), rev); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewReview(rev))
}
