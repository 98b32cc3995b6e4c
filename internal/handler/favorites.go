package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/alhussam/store-api/internal/domain/favorites"
)

type favoritesView struct {
	ProductIDs []string `json:"product_ids"`
}

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.favorites.List(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, favoritesView{ProductIDs: ids})
}

type toggleFavoriteResponse struct {
	ProductID string `json:"product_id"`
	Favorite  bool   `json:"favorite"`
}

// toggleFavorite adds the product to the user's favorites, or removes it when
// already present.
func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r.Context()).ID
	productID := chi.URLParam(r, "productID")

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	err := h.favorites.Remove(r.Context(), userID, productID)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, toggleFavoriteResponse{ProductID: productID, Favorite: false})
	case errors.Is(err, favorites.ErrNotFavorite):
		if err := h.favorites.Add(r.Context(), userID, productID); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toggleFavoriteResponse{ProductID: productID, Favorite: true})
	default:
		respondDomainError(w, r, err)
	}
}
