package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
)

const defaultAPIURL = "https://api.stripe.com"

// Client talks to a Stripe-compatible REST API with form-encoded bodies.
type Client struct {
	baseURL    string
	apiKey     string
	prices     func(plan string) string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a processor client from configuration.
func NewClient(cfg config.BillingConfig, log *logger.Logger) *Client {
	base := strings.TrimRight(cfg.GetBillingAPIURL(), "/")
	if base == "" {
		base = defaultAPIURL
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.GetBillingAPIKey(),
		prices:     cfg.GetBillingPriceID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError is a non-2xx processor response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("processor status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("processor status %d: %s", e.StatusCode, e.Message)
}

// CreateSubscription creates the processor customer if needed, then the
// subscription for the plan's price.
func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest, idempotencyKey string) (*Subscription, error) {
	price := c.prices(string(req.Plan))
	if price == "" {
		return nil, fmt.Errorf("no price configured for plan %q", req.Plan)
	}

	paymentCustomer := req.PaymentCustomerID
	if paymentCustomer == "" {
		var created struct {
			ID string `json:"id"`
		}
		form := url.Values{}
		form.Set("email", req.Email)
		form.Set("name", req.Name)
		form.Set("metadata[customer_id]", req.CustomerID)
		if err := c.post(ctx, "/v1/customers", form, idempotencyKey+":customer", &created); err != nil {
			return nil, fmt.Errorf("create processor customer: %w", err)
		}
		paymentCustomer = created.ID
	}

	form := url.Values{}
	form.Set("customer", paymentCustomer)
	form.Set("items[0][price]", price)
	form.Set("metadata[customer_id]", req.CustomerID)
	var sub struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/v1/subscriptions", form, idempotencyKey, &sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &Subscription{ID: sub.ID, PaymentCustomerID: paymentCustomer, Status: mapStatus(sub.Status)}, nil
}

// CancelSubscription cancels now or at the end of the billing period.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string, immediate bool, idempotencyKey string) error {
	path := "/v1/subscriptions/" + url.PathEscape(subscriptionID)
	if immediate {
		return c.do(ctx, http.MethodDelete, path, nil, idempotencyKey, nil)
	}
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")
	return c.post(ctx, path, form, idempotencyKey, nil)
}

// CreatePaymentIntent applies the coupon, if any, and creates the intent.
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest, idempotencyKey string) (*PaymentIntent, error) {
	final := req.AmountCents
	if req.Coupon != "" {
		discounted, err := c.applyCoupon(ctx, req.Coupon, req.AmountCents)
		if err != nil {
			return nil, err
		}
		final = discounted
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(final, 10))
	form.Set("currency", "usd")
	form.Set("description", req.Description)
	form.Set("metadata[customer_id]", req.CustomerID)
	if req.PaymentCustomerID != "" {
		form.Set("customer", req.PaymentCustomerID)
	}
	var intent struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := c.post(ctx, "/v1/payment_intents", form, idempotencyKey, &intent); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &PaymentIntent{
		ID:               intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountCents:      req.AmountCents,
		FinalAmountCents: final,
		Coupon:           req.Coupon,
	}, nil
}

func (c *Client) applyCoupon(ctx context.Context, code string, amount int64) (int64, error) {
	var coupon struct {
		Valid      bool    `json:"valid"`
		AmountOff  int64   `json:"amount_off"`
		PercentOff float64 `json:"percent_off"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/coupons/"+url.PathEscape(code), nil, "", &coupon)
	var status *StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return 0, ErrUnknownCoupon
	}
	if err != nil {
		return 0, fmt.Errorf("look up coupon: %w", err)
	}
	if !coupon.Valid {
		return 0, ErrUnknownCoupon
	}
	return Discount(amount, coupon.AmountOff, coupon.PercentOff), nil
}

// Discount applies a fixed or percentage coupon. The result is never negative.
func Discount(amount, amountOff int64, percentOff float64) int64 {
	final := amount
	switch {
	case amountOff > 0:
		final -= amountOff
	case percentOff > 0:
		final -= int64(float64(amount)*percentOff/100 + 0.5)
	}
	return max(final, 0)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	return c.do(ctx, http.MethodPost, path, form, idempotencyKey, out)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, idempotencyKey string, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr)
		if c.log != nil {
			c.log.Warn("billing request failed", "method", method, "path", path, "status", resp.StatusCode, "code", apiErr.Error.Code)
		}
		return &StatusError{StatusCode: resp.StatusCode, Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func mapStatus(s string) domain.SubscriptionStatus {
	switch s {
	case "active", "trialing", "incomplete":
		return domain.SubscriptionActive
	case "paused":
		return domain.SubscriptionPaused
	case "canceled", "cancelled", "incomplete_expired":
		return domain.SubscriptionCancelled
	}
	return domain.SubscriptionActive
}
