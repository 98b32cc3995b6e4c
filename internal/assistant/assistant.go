// Package assistant proxies chat requests to a generative-language API and
// relays the streamed answer fragments to the storefront client.
package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/alhussam/store-api/internal/domain/product"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("assistant is not configured")
	// ErrUpstream is returned for any upstream failure. The client shows a
	// single generic message; details stay in the logs.
	ErrUpstream = errors.New("assistant is unavailable")
)

// Message is one turn of the conversation.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Client calls a streamGenerateContent-style endpoint with SSE framing.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates an assistant Client. An empty apiKey leaves the assistant
// disabled; Stream reports ErrNotConfigured.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// systemInstruction builds the storefront persona with the catalog inlined so
// the model answers from real stock, prices in SAR.
func systemInstruction(catalog []product.Product) (string, error) {
	type entry struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Price    string `json:"price"`
		Category string `json:"category"`
		Brand    string `json:"brand"`
		Stock    int    `json:"stock"`
	}
	entries := make([]entry, len(catalog))
	for i, p := range catalog {
		entries[i] = entry{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.StringFixed(2),
			Category: p.Category,
			Brand:    p.Brand,
			Stock:    p.Stock,
		}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", errors.Wrap(err, "marshal catalog")
	}

	var b strings.Builder
	b.WriteString("أنت مساعد تسوق ذكي لمتجر الحسام. ")
	b.WriteString("أجب بالعربية بإيجاز ولطف، ورشّح المنتجات من القائمة أدناه فقط. ")
	b.WriteString("الأسعار بالريال السعودي.\n\nقائمة المنتجات:\n")
	b.Write(raw)
	return b.String(), nil
}

type generateRequest struct {
	SystemInstruction content   `json:"system_instruction"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Stream sends the conversation upstream and invokes onText for each answer
// fragment as it arrives.
func (c *Client) Stream(ctx context.Context, catalog []product.Product, history []Message, onText func(string) error) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	persona, err := systemInstruction(catalog)
	if err != nil {
		return err
	}

	req := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: persona}}},
	}
	for _, m := range history {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	url := c.baseURL + "?alt=sse&key=" + c.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Wrap(ErrUpstream, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrUpstream, "status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		text, err := extractText([]byte(strings.TrimPrefix(line, "data: ")))
		if err != nil {
			return errors.Wrap(ErrUpstream, err.Error())
		}
		if text == "" {
			continue
		}
		if err := onText(text); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(ErrUpstream, err.Error())
	}
	return nil
}

// extractText pulls candidates[0].content.parts[*].text out of one streamed
// chunk without decoding the whole payload into structs.
func extractText(chunk []byte) (string, error) {
	var out strings.Builder
	d := jx.DecodeBytes(chunk)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "candidates" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				if string(key) != "content" {
					return d.Skip()
				}
				return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
					if string(key) != "parts" {
						return d.Skip()
					}
					return d.Arr(func(d *jx.Decoder) error {
						return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
							if string(key) != "text" {
								return d.Skip()
							}
							s, err := d.Str()
							if err != nil {
								return err
							}
							out.WriteString(s)
							return nil
						})
					})
				})
			})
		})
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
