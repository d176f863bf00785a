// Package client talks to a running merchant HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alovak/brcode-playground/internal/brcode"
	"github.com/alovak/brcode-playground/merchant"
	"github.com/alovak/brcode-playground/merchant/models"
)

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// StatusError is returned for unexpected responses. It unwraps to the
// merchant sentinel matching the status code, if any.
type StatusError struct {
	Status int
	Body   string
	err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	profile := &models.Profile{}
	if err := c.do(ctx, http.MethodGet, "/profile", nil, http.StatusOK, nil, profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (c *Client) SaveProfile(ctx context.Context, req models.Profile) (*models.Profile, error) {
	profile := &models.Profile{}
	errs := map[int]error{
		http.StatusUnprocessableEntity:   merchant.ErrProfileIncomplete,
		http.StatusRequestEntityTooLarge: brcode.ErrFieldTooLong,
	}
	if err := c.do(ctx, http.MethodPut, "/profile", req, http.StatusOK, errs, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (c *Client) Generate(ctx context.Context, req models.CreatePayload) (*models.Transaction, error) {
	transaction := &models.Transaction{}
	errs := map[int]error{
		http.StatusConflict:              merchant.ErrProfileIncomplete,
		http.StatusUnprocessableEntity:   merchant.ErrInvalidAmount,
		http.StatusRequestEntityTooLarge: brcode.ErrFieldTooLong,
	}
	if err := c.do(ctx, http.MethodPost, "/payloads", req, http.StatusCreated, errs, transaction); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return transaction, nil
}

func (c *Client) Verify(ctx context.Context, code string) (*brcode.Payload, error) {
	payload := &brcode.Payload{}
	if err := c.do(ctx, http.MethodPost, "/payloads/verify", models.VerifyPayload{BRCode: code}, http.StatusOK, nil, payload); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	return payload, nil
}

func (c *Client) ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	path := "/transactions"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var transactions []*models.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, nil, &transactions); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	transaction := &models.Transaction{}
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, http.StatusOK, nil, transaction); err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return transaction, nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, want int, errs map[int]error, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		se := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b)), err: errs[resp.StatusCode]}
		if resp.StatusCode == http.StatusNotFound {
			se.err = merchant.ErrNotFound
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
