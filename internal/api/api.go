package api

import (
	"context"
	"encoding/json"
	"net/http"

	"cqwealth-client/internal/client"
	"cqwealth-client/internal/model"
)

// Client is the per-endpoint façade over the backend wrapper: one method per
// endpoint, a literal path each, body passed through unchanged. No retries,
// no caching.
type Client struct {
	backend *client.Backend
}

func New(backend *client.Backend) *Client {
	return &Client{backend: backend}
}

// unmarshalData decodes the envelope payload, mapping failures to the parse
// error kind so callers keep a structured taxonomy.
func unmarshalData(env *client.Envelope, v any) error {
	if err := env.Err(); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &client.Error{Kind: client.KindParse, Message: "Unexpected server response"}
	}
	return nil
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginData, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/login", req)
	var out model.LoginData
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterData, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/register", req)
	var out model.RegisterData
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP confirms a registration (or reset) code; a successful response
// carries the session token and user, same shape as login.
func (c *Client) VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (*model.LoginData, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/verify-otp", req)
	var out model.LoginData
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/resend-otp", map[string]string{"email": email})
	return env.Err()
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/forgot-password", map[string]string{"email": email})
	return env.Err()
}

func (c *Client) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	env := c.backend.Do(ctx, http.MethodPost, "/api/users/reset-password", req)
	return env.Err()
}

func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/user/profile", nil)
	var out model.User
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDashboard(ctx context.Context) (*model.DashboardSummary, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/dashboard", nil)
	var out model.DashboardSummary
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEarnings(ctx context.Context) (*model.EarningsSnapshot, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/earnings", nil)
	var out model.EarningsSnapshot
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTeam(ctx context.Context) (*model.Team, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/team", nil)
	var out model.Team
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProducts(ctx context.Context) ([]model.Product, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/products", nil)
	var out []model.Product
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetWithdrawals(ctx context.Context) ([]model.Withdrawal, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/withdrawals", nil)
	var out []model.Withdrawal
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequestWithdrawal(ctx context.Context, req model.WithdrawalRequest) (*model.Withdrawal, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/withdrawals", req)
	var out model.Withdrawal
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRewards(ctx context.Context) ([]model.Reward, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/rewards", nil)
	var out []model.Reward
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTerms(ctx context.Context) (*model.Terms, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/api/terms", nil)
	var out model.Terms
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*model.HealthStatus, error) {
	env := c.backend.Do(ctx, http.MethodGet, "/health", nil)
	var out model.HealthStatus
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePaymentOrder(ctx context.Context, req model.CreateOrderRequest) (*model.PaymentOrder, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/payments/create-order", req)
	var out model.PaymentOrder
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateActivationOrder asks the server for an activation order; the server
// decides the amount.
func (c *Client) CreateActivationOrder(ctx context.Context, req model.ActivationOrderRequest) (*model.PaymentOrder, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/payments/create-activation-order", req)
	var out model.PaymentOrder
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment reports its decision in the body's success flag, not the
// HTTP status: a 200 with success:false is a denial.
func (c *Client) VerifyPayment(ctx context.Context, req model.VerifyPaymentRequest) (*model.PaymentVerification, error) {
	env := c.backend.Do(ctx, http.MethodPost, "/api/payments/verify", req)
	if err := env.Err(); err != nil {
		return nil, err
	}
	if env.ServerSuccess == nil || !*env.ServerSuccess {
		msg := env.Message
		if msg == "" {
			msg = "Payment verification failed"
		}
		return nil, &client.Error{Kind: client.KindUnknown, Status: env.Status, Message: msg}
	}
	var out model.PaymentVerification
	if err := unmarshalData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
