// Package stripe implements the upstream feed ports against a Stripe
// Financial Connections style REST API.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"networth/internal/core"
	"networth/internal/provider"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Client is a typed client for the provider API. Requests are
// form-encoded, responses are decoded into the explicit wire records in
// types.go.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used for local fakes and tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ provider.Feed = (*Client)(nil)

// ListAccounts returns one page of the holder's linked accounts.
func (c *Client) ListAccounts(ctx context.Context, holderID string, limit int) (provider.AccountPage, error) {
	params := url.Values{}
	params.Set("account_holder[customer]", holderID)
	params.Set("limit", strconv.Itoa(limit))

	var list accountList
	if err := c.do(ctx, http.MethodGet, "/financial_connections/accounts", params, &list); err != nil {
		return provider.AccountPage{}, fmt.Errorf("list accounts: %w", err)
	}

	page := provider.AccountPage{HasMore: list.HasMore}
	page.Data = make([]core.Account, 0, len(list.Data))
	for _, res := range list.Data {
		page.Data = append(page.Data, res.toCore())
	}
	return page, nil
}

// GetAccount fetches a single account by ID.
func (c *Client) GetAccount(ctx context.Context, accountID string) (core.Account, error) {
	var res accountResource
	if err := c.do(ctx, http.MethodGet, "/financial_connections/accounts/"+accountID, nil, &res); err != nil {
		return core.Account{}, fmt.Errorf("get account %s: %w", accountID, err)
	}
	return res.toCore(), nil
}

// ListTransactions returns one page of an account's transactions in
// provider order.
func (c *Client) ListTransactions(ctx context.Context, q provider.TransactionQuery) (provider.TransactionPage, error) {
	params := url.Values{}
	params.Set("account", q.AccountID)
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.StartingAfter != "" {
		params.Set("starting_after", q.StartingAfter)
	}
	if q.TransactedAtGTE > 0 {
		params.Set("transacted_at[gte]", strconv.FormatInt(q.TransactedAtGTE, 10))
	}

	var list transactionList
	if err := c.do(ctx, http.MethodGet, "/financial_connections/transactions", params, &list); err != nil {
		return provider.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	page := provider.TransactionPage{HasMore: list.HasMore}
	page.Data = make([]core.Transaction, 0, len(list.Data))
	for _, res := range list.Data {
		page.Data = append(page.Data, res.toCore())
	}
	return page, nil
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (core.Transaction, error) {
	var res transactionResource
	if err := c.do(ctx, http.MethodGet, "/financial_connections/transactions/"+transactionID, nil, &res); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", transactionID, err)
	}
	return res.toCore(), nil
}

// Subscribe enables ongoing data collection for the given features.
func (c *Client) Subscribe(ctx context.Context, accountID string, features []string) error {
	params := url.Values{}
	for _, f := range features {
		params.Add("features[]", f)
	}
	if err := c.do(ctx, http.MethodPost, "/financial_connections/accounts/"+accountID+"/subscribe", params, nil); err != nil {
		return fmt.Errorf("subscribe account %s: %w", accountID, err)
	}
	return nil
}

// Refresh asks the provider to re-pull the given features for an account.
func (c *Client) Refresh(ctx context.Context, accountID string, features []string) error {
	params := url.Values{}
	for _, f := range features {
		params.Add("features[]", f)
	}
	if err := c.do(ctx, http.MethodPost, "/financial_connections/accounts/"+accountID+"/refresh", params, nil); err != nil {
		return fmt.Errorf("refresh account %s: %w", accountID, err)
	}
	return nil
}

// Disconnect unlinks an account from the holder's profile.
func (c *Client) Disconnect(ctx context.Context, accountID string) error {
	if err := c.do(ctx, http.MethodPost, "/financial_connections/accounts/"+accountID+"/disconnect", nil, nil); err != nil {
		return fmt.Errorf("disconnect account %s: %w", accountID, err)
	}
	return nil
}

// CreateCustomer registers a new upstream customer for the email.
func (c *Client) CreateCustomer(ctx context.Context, email string) (core.Customer, error) {
	params := url.Values{}
	params.Set("email", email)

	var res customerResource
	if err := c.do(ctx, http.MethodPost, "/customers", params, &res); err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return res.toCore(), nil
}

// CreateSession opens an auth session for linking accounts and returns its
// client secret.
func (c *Client) CreateSession(ctx context.Context, customerID string) (string, error) {
	params := url.Values{}
	params.Set("account_holder[type]", "customer")
	params.Set("account_holder[customer]", customerID)
	params.Add("permissions[]", "balances")
	params.Add("permissions[]", "transactions")

	var res sessionResource
	if err := c.do(ctx, http.MethodPost, "/financial_connections/sessions", params, &res); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return res.ClientSecret, nil
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	var (
		reqURL = c.baseURL + path
		body   io.Reader
	)
	if len(params) > 0 {
		if method == http.MethodGet {
			reqURL += "?" + params.Encode()
		} else {
			body = strings.NewReader(params.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "unparseable error response"}
		}
		apiErr := envelope.Error
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
