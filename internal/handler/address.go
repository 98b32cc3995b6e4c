package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alhussam/store-api/internal/domain/user"
)

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.users.ListAddresses(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if addrs == nil {
		addrs = []user.Address{}
	}
	respondJSON(w, http.StatusOK, addrs)
}

type addressRequest struct {
	Label         string `json:"label"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	Street        string `json:"street"`
	IsDefault     bool   `json:"is_default"`
}

func (req addressRequest) toAddress() user.Address {
	return user.Address{
		Label:         req.Label,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		City:          req.City,
		Street:        req.Street,
		IsDefault:     req.IsDefault,
	}
}

func (req addressRequest) valid() bool {
	return req.RecipientName != "" && req.Phone != "" && req.City != "" && req.Street != ""
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.valid() {
		respondError(w, http.StatusBadRequest, "recipient_name, phone, city, and street are required")
		return
	}

	addr, err := h.users.AddAddress(r.Context(), currentUser(r.Context()).ID, req.toAddress())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, addr)
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.valid() {
		respondError(w, http.StatusBadRequest, "recipient_name, phone, city, and street are required")
		return
	}

	addr := req.toAddress()
	addr.ID = chi.URLParam(r, "id")
	if err := h.users.UpdateAddress(r.Context(), currentUser(r.Context()).ID, addr); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, addr)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	err := h.users.DeleteAddress(r.Context(), currentUser(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
