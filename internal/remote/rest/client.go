// Package rest speaks the managed backend's HTTP API: a PostgREST-style
// table endpoint for rows, a GoTrue-style token endpoint for auth and an
// object endpoint for the avatar bucket. The rest of the app only sees the
// ports in internal/remote; nothing outside this package knows the wire
// shapes.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"saldo/internal/core"
	applog "saldo/internal/log"
)

const (
	defaultTimeout = 15 * time.Second

	restPath    = "/rest/v1"
	authPath    = "/auth/v1"
	storagePath = "/storage/v1"

	transactionsTable = "transactions"
	profilesTable     = "profiles"

	preferReturn = "return=representation"
	preferMerge  = "resolution=merge-duplicates,return=minimal"
)

// TokenProvider supplies the current access token, or "" when signed out.
type TokenProvider func() string

type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	token        TokenProvider
	avatarBucket string
}

func NewClient(baseURL, apiKey, avatarBucket string, timeout time.Duration, token TokenProvider) *Client {
	if avatarBucket == "" {
		avatarBucket = "avatars"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: applog.NewTransport(nil),
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		token:        token,
		avatarBucket: avatarBucket,
	}
}

// apiError is the union of the error bodies the backend's sub-services
// return. Only the human-readable message matters to the core.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, prefer string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if msg := apiErr.text(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	return c.do(ctx, method, path, query, reader, "application/json", prefer, out)
}

// transactionRow is the wire shape of one transaction table row.
type transactionRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	CreatedAt   string  `json:"created_at"`
}

// createdAt timestamps arrive with or without fractional seconds and zone
// depending on the column type, so a few layouts are tried in order.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (r transactionRow) toDomain() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	var createdAt time.Time
	if r.CreatedAt != "" {
		for _, layout := range createdAtLayouts {
			if createdAt, err = time.Parse(layout, r.CreatedAt); err == nil {
				break
			}
		}
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
		}
	}
	tx := core.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        date,
		Description: r.Description,
		Amount:      core.Money{Cents: int64(math.Round(r.Amount * 100))},
		Type:        core.Type(r.Type),
		CreatedAt:   createdAt,
	}
	// The server owns the constraints, but a row that violates them must
	// not leak into the list either.
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", r.ID, err)
	}
	return tx, nil
}

// writeRow is the subset of columns the client is allowed to write. The
// store assigns id and created_at.
type writeRow struct {
	UserID      string  `json:"user_id,omitempty"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

func payloadToRow(userID string, p core.Payload) writeRow {
	return writeRow{
		UserID:      userID,
		Date:        p.Date.String(),
		Description: p.Description,
		Amount:      p.Amount.Float64(),
		Type:        string(p.Type),
	}
}

func rowsToDomain(rows []transactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// ListTransactions implements remote.Store. The server applies the
// canonical order; the client re-sorts identically anyway so a misbehaving
// proxy cannot break the list invariant.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "date.desc,created_at.desc")

	var rows []transactionRow
	if err := c.doJSON(ctx, http.MethodGet, restPath+"/"+transactionsTable, q, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs, err := rowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	core.Sort(txs)
	return txs, nil
}

// InsertTransaction implements remote.Store.
func (c *Client) InsertTransaction(ctx context.Context, userID string, p core.Payload) (core.Transaction, error) {
	body := []writeRow{payloadToRow(userID, p)}
	var rows []transactionRow
	if err := c.doJSON(ctx, http.MethodPost, restPath+"/"+transactionsTable, nil, body, preferReturn, &rows); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if len(rows) != 1 {
		return core.Transaction{}, fmt.Errorf("insert transaction: expected 1 returned row, got %d", len(rows))
	}
	return rows[0].toDomain()
}

// UpdateTransaction implements remote.Store.
func (c *Client) UpdateTransaction(ctx context.Context, id string, p core.Payload) (core.Transaction, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)

	row := payloadToRow("", p) // ownership is fixed at creation, never rewritten
	var rows []transactionRow
	if err := c.doJSON(ctx, http.MethodPatch, restPath+"/"+transactionsTable, q, row, preferReturn, &rows); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if len(rows) != 1 {
		return core.Transaction{}, fmt.Errorf("update transaction %s: no row matched", id)
	}
	return rows[0].toDomain()
}

// DeleteTransaction implements remote.Store. Row ownership is enforced
// server-side; deleting by id alone cannot reach another user's rows.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.doJSON(ctx, http.MethodDelete, restPath+"/"+transactionsTable, q, nil, "", nil); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}
