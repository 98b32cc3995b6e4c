package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/alhussam/store-api/internal/assistant"
)

type assistantChatRequest struct {
	Message string              `json:"message"`
	History []assistant.Message `json:"history"`
}

// assistantChat relays the assistant's answer as Server-Sent Events, one
// `data:` line per text fragment. Upstream failures after streaming has
// started surface as a final `event: error`.
func (h *Handler) assistantChat(w http.ResponseWriter, r *http.Request) {
	if !h.assistant.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req assistantChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	catalog, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	history := append(req.History, assistant.Message{Role: "user", Text: req.Message})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	err = h.assistant.Stream(r.Context(), catalog, history, func(text string) error {
		if _, err := w.Write([]byte("data: " + sseEscape(text) + "\n\n")); err != nil {
			return errors.Wrap(err, "write event")
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		zctx.From(r.Context()).Warn("assistant stream", zap.Error(err))
		_, _ = w.Write([]byte("event: error\ndata: عذراً، حدث خطأ. حاول مرة أخرى.\n\n"))
		flusher.Flush()
		return
	}

	_, _ = w.Write([]byte("event: done\ndata: \n\n"))
	flusher.Flush()
}

// sseEscape keeps multi-line fragments inside one SSE data field.
func sseEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, []byte("\ndata: ")...)
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
