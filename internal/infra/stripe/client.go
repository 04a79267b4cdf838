// Package stripe is the payment/identity collaborator client. It talks
// to the Stripe REST API (form-encoded, as the API requires) for checkout
// and identity-verification sessions. Without a secret key every call
// degrades to a structured sandbox response so the flow can be simulated.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("stripe")

const defaultBaseURL = "https://api.stripe.com"

// Client wraps HTTP calls to the Stripe API. It implements
// port.PaymentGateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	appURL     string
	cb         *gobreaker.CircuitBreaker
	bh         *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a Stripe client. An empty secretKey puts the client
// in sandbox mode. appURL is the web origin used for redirect URLs.
func NewClient(httpClient *http.Client, baseURL, secretKey, appURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		secretKey:  secretKey,
		appURL:     appURL,
		cb:         cb,
		bh:         resilience.NewBulkhead(maxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// Configured reports whether a secret key is present.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

// doForm executes an authenticated form-encoded POST against the Stripe
// API. Concurrency is capped by the bulkhead so a slow provider cannot
// exhaust the handler pool.
func (c *Client) doForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	if err := c.bh.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bh.Release()

	endpoint := fmt.Sprintf("%s/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("stripe: request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("stripe: non-2xx response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("stripe: request OK",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// stripeSession is the subset of the Stripe session object we read back.
type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession creates a payment checkout session for a mission
// reward. Amounts are converted to centavos as the API expects.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	ctx, span := tracer.Start(ctx, "Stripe.CreateCheckoutSession")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", req.MissionID))

	if !c.Configured() {
		return &domain.CheckoutSession{
			Sandbox: true,
			Message: domain.SandboxPrefix + ": Add STRIPE_SECRET_KEY to .env to enable real payments.",
		}, nil
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "brl")
	form.Set("line_items[0][price_data][product_data][name]", "Missão: "+req.Title)
	form.Set("line_items[0][price_data][product_data][description]",
		fmt.Sprintf("Pagamento para o prestador (ID: %s)", req.ProviderID))
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", int64(req.Amount*100+0.5)))
	form.Set("success_url", fmt.Sprintf("%s/mission/%s?payment=success", c.appURL, req.MissionID))
	form.Set("cancel_url", fmt.Sprintf("%s/mission/%s?payment=cancelled", c.appURL, req.MissionID))
	form.Set("metadata[missionId]", req.MissionID)
	form.Set("metadata[providerId]", req.ProviderID)
	form.Set("metadata[type]", "mission_payment")

	var session stripeSession
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doForm(ctx, "checkout/sessions", form)
			if err != nil {
				return err
			}
			return json.Unmarshal(body, &session)
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "stripe/checkout", Err: err}
	}

	return &domain.CheckoutSession{URL: session.URL}, nil
}

// CreateIdentitySession creates a document identity-verification session.
func (c *Client) CreateIdentitySession(ctx context.Context, req *domain.IdentityRequest) (*domain.IdentitySession, error) {
	ctx, span := tracer.Start(ctx, "Stripe.CreateIdentitySession")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	if !c.Configured() {
		return &domain.IdentitySession{
			Sandbox: true,
			Message: domain.SandboxPrefix + ": Stripe Identity requires API Keys.",
		}, nil
	}

	form := url.Values{}
	form.Set("type", "document")
	form.Set("metadata[userId]", req.UserID)
	form.Set("options[document][allowed_types][0]", "driving_license")
	form.Set("options[document][allowed_types][1]", "passport")
	form.Set("options[document][allowed_types][2]", "id_card")
	form.Set("options[document][require_live_capture]", "true")
	form.Set("options[document][require_matching_selfie]", "true")
	form.Set("return_url", c.appURL+"/register?verified=true")

	var session stripeSession
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doForm(ctx, "identity/verification_sessions", form)
			if err != nil {
				return err
			}
			return json.Unmarshal(body, &session)
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "stripe/identity", Err: err}
	}

	return &domain.IdentitySession{URL: session.URL, ID: session.ID}, nil
}
