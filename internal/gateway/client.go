package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shoply/checkout/internal/models"
)

// default time of retry after
const delaySeconds = 60

// InitiateRequest is payment initiation parameters
type InitiateRequest struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	RedirectURL string `json:"redirect_url"`
	CallbackURL string `json:"callback_url"`
	UserID      uint64 `json:"user_id"`
	Phone       string `json:"phone,omitempty"`
}

// InitiateResult is gateway response to payment initiation
type InitiateResult struct {
	Handle      string `json:"handle"`
	RedirectURL string `json:"redirect_url"`
}

// StatusResult is gateway-side payment state for the handle
type StatusResult struct {
	State         string `json:"state"`
	Code          string `json:"code"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Signal normalizes the gateway-side state into a status signal.
func (r *StatusResult) Signal() models.StatusSignal {
	return models.StatusSignal{
		State:         models.NormalizeGatewayState(r.State),
		Code:          r.Code,
		TransactionID: r.TransactionID,
	}
}

// Client is HTTP client for payment gateway
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new gateway Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Initiate registers a payment with the gateway
// 200 — payment is registered, handle and redirect url are returned.
// 429 — request rate is exceeded.
// 500 — gateway internal error.
func (c *Client) Initiate(ctx context.Context, initReq InitiateRequest) (*InitiateResult, error) {
	// POST /api/payments
	url, err := url.JoinPath(c.baseURL, "api", "payments")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(initReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		initResp := InitiateResult{}
		if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
			return nil, err
		}
		return &initResp, nil
	case http.StatusTooManyRequests:
		return nil, retryAfterError(resp)
	default:
		return nil, models.ErrGatewayUnavailable
	}
}

// QueryStatus returns gateway-side payment state for the handle
// 200 — state is returned.
// 404 — handle is not registered with the gateway.
// 429 — request rate is exceeded.
// 500 — gateway internal error.
func (c *Client) QueryStatus(ctx context.Context, handle string) (*StatusResult, error) {
	// GET /api/payments/{handle}
	url, err := url.JoinPath(c.baseURL, "api", "payments", handle)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		stResp := StatusResult{}
		if err := json.NewDecoder(resp.Body).Decode(&stResp); err != nil {
			return nil, err
		}
		return &stResp, nil
	case http.StatusNotFound:
		return nil, models.ErrDataNotFound
	case http.StatusTooManyRequests:
		return nil, retryAfterError(resp)
	default:
		return nil, models.ErrGatewayUnavailable
	}
}

func retryAfterError(resp *http.Response) error {
	t, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || t <= 0 {
		// set default
		t = delaySeconds
	}
	return models.NewTooManyRequestsError(time.Duration(t) * time.Second)
}
