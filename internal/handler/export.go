package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/export"
)

func (h *Handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products_export.csv"`)
	if err := export.WriteProductsCSV(w, products); err != nil {
		// Headers are already out; all we can do is log.
		zctx.From(r.Context()).Error("export products", zap.Error(err))
	}
}
