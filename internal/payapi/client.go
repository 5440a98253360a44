package payapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mdflamingo/paydesk/internal/models"
	"go.uber.org/zap"
)

// Client talks to the external payments API on behalf of a dashboard user.
// Every call carries the caller's own bearer token.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	r := c.client.R().SetContext(ctx)
	if token != "" {
		r.SetAuthToken(token)
	}
	if key := IdempotencyKey(ctx); key != "" {
		r.SetHeader("Idempotency-Key", key)
	}
	return r
}

// do executes r and returns the raw body of a 2xx response. endpoint is the
// route template used as the metrics label.
func (c *Client) do(r *resty.Request, method, endpoint string) ([]byte, error) {
	start := time.Now()
	resp, err := r.Execute(method, endpoint)
	upstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		upstreamRequests.WithLabelValues(endpoint, "transport_error").Inc()
		zap.L().Warn("payments api request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, endpoint, err)
	}

	if !resp.IsSuccess() {
		upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		zap.L().Info("payments api rejected request",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	upstreamRequests.WithLabelValues(endpoint, "ok").Inc()
	return resp.Body(), nil
}

func (c *Client) ListWithdrawals(ctx context.Context, token string, page, limit int) (models.WithdrawalPage, error) {
	r := c.request(ctx, token)
	if page > 0 {
		r.SetQueryParam("page", strconv.Itoa(page))
	}
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}

	body, err := c.do(r, http.MethodGet, "/api/withdrawals")
	if err != nil {
		return models.WithdrawalPage{}, err
	}

	var out models.WithdrawalPage
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = decode(trimmed, &out.Withdrawals)
	} else {
		err = decode(body, &out)
		if err == nil && out.Withdrawals == nil {
			err = decode(body, &out.Withdrawals, "data")
		}
	}
	if err != nil {
		return models.WithdrawalPage{}, fmt.Errorf("failed to decode withdrawals: %w", err)
	}
	if out.Total == 0 {
		out.Total = len(out.Withdrawals)
	}
	return out, nil
}

func (c *Client) CreateWithdrawal(ctx context.Context, token string, body models.CreateWithdrawalBody) (models.Withdrawal, error) {
	r := c.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	raw, err := c.do(r, http.MethodPost, "/api/withdrawals")
	if err != nil {
		return models.Withdrawal{}, err
	}

	var out models.Withdrawal
	if err := decode(raw, &out, "withdrawal", "data"); err != nil {
		return models.Withdrawal{}, fmt.Errorf("failed to decode withdrawal: %w", err)
	}
	return out, nil
}

// WithdrawalAction posts one of approve, reject, retry or status for id.
// reason is only sent when non-empty.
func (c *Client) WithdrawalAction(ctx context.Context, token, id, action, reason string) (models.Withdrawal, error) {
	r := c.request(ctx, token).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json")
	if reason != "" {
		r.SetBody(map[string]string{"reason": reason})
	} else {
		r.SetBody(map[string]string{})
	}

	raw, err := c.do(r, http.MethodPost, "/api/withdrawals/{id}/"+action)
	if err != nil {
		return models.Withdrawal{}, err
	}

	var out models.Withdrawal
	if err := decode(raw, &out, "withdrawal", "data"); err != nil {
		return models.Withdrawal{}, fmt.Errorf("failed to decode withdrawal: %w", err)
	}
	return out, nil
}

func (c *Client) ProcessPending(ctx context.Context, token string) (models.ProcessPendingResult, error) {
	r := c.request(ctx, token).SetHeader("Content-Type", "application/json").SetBody(map[string]string{})

	raw, err := c.do(r, http.MethodPost, "/api/withdrawals/admin/process-pending")
	if err != nil {
		return models.ProcessPendingResult{}, err
	}

	var out models.ProcessPendingResult
	if err := decode(raw, &out, "data"); err != nil {
		return models.ProcessPendingResult{}, fmt.Errorf("failed to decode batch result: %w", err)
	}
	return out, nil
}

func (c *Client) AdminBalance(ctx context.Context, token, currency string) (models.AdminBalance, error) {
	r := c.request(ctx, token)
	if currency != "" {
		r.SetQueryParam("currency", currency)
	}

	raw, err := c.do(r, http.MethodGet, "/api/withdrawals/admin/balance")
	if err != nil {
		return models.AdminBalance{}, err
	}

	out := models.AdminBalance{Currency: currency}
	if err := decode(raw, &out, "data"); err != nil {
		return models.AdminBalance{}, fmt.Errorf("failed to decode balance: %w", err)
	}
	return out, nil
}

func (c *Client) ListDeposits(ctx context.Context, token string) ([]models.Deposit, error) {
	raw, err := c.do(c.request(ctx, token), http.MethodGet, "/api/deposits")
	if err != nil {
		return nil, err
	}

	var out []models.Deposit
	if err := decode(raw, &out, "deposits", "data"); err != nil {
		return nil, fmt.Errorf("failed to decode deposits: %w", err)
	}
	return out, nil
}

func (c *Client) CreateCryptoDeposit(ctx context.Context, token string, body models.CryptoDepositBody) (models.Deposit, error) {
	r := c.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	raw, err := c.do(r, http.MethodPost, "/api/deposits")
	if err != nil {
		return models.Deposit{}, err
	}
	return decodeDeposit(raw)
}

// CreateFileDeposit sends a multipart deposit with proof attached under
// the "proof" field.
func (c *Client) CreateFileDeposit(ctx context.Context, token string, fields map[string]string, proof *models.Upload) (models.Deposit, error) {
	r := c.request(ctx, token).SetMultipartFormData(fields)
	if proof != nil {
		r.SetMultipartField("proof", proof.Filename, proof.ContentType, bytes.NewReader(proof.Content))
	}

	raw, err := c.do(r, http.MethodPost, "/api/deposits")
	if err != nil {
		return models.Deposit{}, err
	}
	return decodeDeposit(raw)
}

func decodeDeposit(raw []byte) (models.Deposit, error) {
	var out models.Deposit
	if err := decode(raw, &out, "deposit", "data"); err != nil {
		return models.Deposit{}, fmt.Errorf("failed to decode deposit: %w", err)
	}
	return out, nil
}

func (c *Client) SubmitKYC(ctx context.Context, token string, fields map[string]string, front, back *models.Upload) (models.KYCSubmission, error) {
	r := c.request(ctx, token).SetMultipartFormData(fields)
	r.SetMultipartField("frontImage", front.Filename, front.ContentType, bytes.NewReader(front.Content))
	r.SetMultipartField("backImage", back.Filename, back.ContentType, bytes.NewReader(back.Content))

	raw, err := c.do(r, http.MethodPost, "/api/kycs")
	if err != nil {
		return models.KYCSubmission{}, err
	}

	var out models.KYCSubmission
	if err := decode(raw, &out, "kyc", "data"); err != nil {
		return models.KYCSubmission{}, fmt.Errorf("failed to decode kyc: %w", err)
	}
	if out.Status == "" {
		out.Status = "pending"
	}
	return out, nil
}

func (c *Client) BankAccount(ctx context.Context, token, userID string) (models.BankAccount, error) {
	r := c.request(ctx, token).SetPathParam("userId", userID)

	raw, err := c.do(r, http.MethodGet, "/api/banking/account/{userId}")
	if err != nil {
		return models.BankAccount{}, err
	}

	var out models.BankAccount
	if err := decode(raw, &out, "account", "data"); err != nil {
		return models.BankAccount{}, fmt.Errorf("failed to decode bank account: %w", err)
	}
	return out, nil
}
