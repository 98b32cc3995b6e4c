package assistant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhussam/store-api/internal/domain/product"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  string
	}{
		{
			name:  "single part",
			chunk: `{"candidates":[{"content":{"parts":[{"text":"مرحباً"}]}}]}`,
			want:  "مرحباً",
		},
		{
			name:  "multiple parts concatenated",
			chunk: `{"candidates":[{"content":{"parts":[{"text":"أهلاً "},{"text":"بك"}]}}]}`,
			want:  "أهلاً بك",
		},
		{
			name:  "extra fields skipped",
			chunk: `{"modelVersion":"x","candidates":[{"finishReason":"STOP","content":{"role":"model","parts":[{"text":"ok"}]}}],"usageMetadata":{"totalTokenCount":7}}`,
			want:  "ok",
		},
		{
			name:  "no candidates",
			chunk: `{"usageMetadata":{"totalTokenCount":0}}`,
			want:  "",
		},
		{
			name:  "empty text part",
			chunk: `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText([]byte(tt.chunk))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTextMalformed(t *testing.T) {
	_, err := extractText([]byte(`{"candidates":[{`))
	assert.Error(t, err)
}

func TestStreamDisabledWithoutKey(t *testing.T) {
	c := NewClient("http://unused", "")
	assert.False(t, c.Enabled())

	err := c.Stream(context.Background(), nil, nil, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStreamRelaysChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "عود كمبودي", "catalog must be inlined in the persona")
		assert.Contains(t, string(body), `"role":"user"`)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"أنصحك "}]}}]}`+"\n\n")
		_, _ = io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"بالعود الكمبودي"}]}}]}`+"\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	catalog := []product.Product{
		{ID: "1", Name: "عود كمبودي فاخر", Price: decimal.NewFromInt(350), Stock: 15},
	}

	var got strings.Builder
	err := c.Stream(context.Background(), catalog, []Message{
		{Role: "user", Text: "ما أفضل عود عندكم؟"},
	}, func(text string) error {
		got.WriteString(text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "أنصحك بالعود الكمبودي", got.String())
}

func TestStreamUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	err := c.Stream(context.Background(), nil, nil, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestStreamStopsWhenCallbackFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"a"}]}}]}`+"\n\n")
		_, _ = io.WriteString(w, `data: {"candidates":[{"content":{"parts":[{"text":"b"}]}}]}`+"\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	stop := io.ErrClosedPipe
	var calls int
	err := c.Stream(context.Background(), nil, nil, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
