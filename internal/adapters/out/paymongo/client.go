// Package paymongo is the outbound adapter to the PayMongo REST API. It
// creates payment intents with an attached QRPh payment method; everything
// past the returned identifiers (QR rendering, settlement) happens on the
// provider side and comes back through the webhook.
package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

const defaultBaseURL = "https://api.paymongo.com"

const requestTimeout = 15 * time.Second

// Client talks to the PayMongo API using a secret key over basic auth.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient creates a PayMongo client. The secret key selects test or live
// mode on the provider side (sk_test_* vs sk_live_*).
func NewClient(secretKey string) (*Client, error) {
	return NewClientWithBaseURL(secretKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom API endpoint.
func NewClientWithBaseURL(secretKey, baseURL string) (*Client, error) {
	if secretKey == "" {
		return nil, errs.NewValueIsRequiredError("secretKey")
	}
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}

	return &Client{
		baseURL:    baseURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(secretKey+":")),
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type apiResource struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			NextAction *struct {
				Code struct {
					ImageURL string `json:"image_url"`
				} `json:"code"`
			} `json:"next_action"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateQRIntent creates a payment intent restricted to the QRPh method,
// attaches a fresh QRPh payment method to it, and returns the provider
// identifiers plus the QR image URL from the attach response.
//
// The order ID travels in the intent metadata so the webhook reconciler can
// correlate settlement events back to the order.
func (c *Client) CreateQRIntent(
	ctx context.Context,
	orderID kernel.UUID,
	amountCentavos int64,
) (ports.PaymentIntent, error) {
	intentPayload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"amount":                 amountCentavos,
				"currency":               "PHP",
				"payment_method_allowed": []string{"qrph"},
				"metadata": map[string]string{
					"order_id": orderID.String(),
				},
			},
		},
	}

	var intent apiResource
	if err := c.post(ctx, "/v1/payment_intents", intentPayload, &intent); err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}

	methodPayload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"type": "qrph",
			},
		},
	}

	var method apiResource
	if err := c.post(ctx, "/v1/payment_methods", methodPayload, &method); err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("create payment method: %w", err)
	}

	attachPayload := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"payment_method": method.Data.ID,
			},
		},
	}

	var attached apiResource
	path := "/v1/payment_intents/" + intent.Data.ID + "/attach"
	if err := c.post(ctx, path, attachPayload, &attached); err != nil {
		return ports.PaymentIntent{}, fmt.Errorf("attach payment method: %w", err)
	}

	result := ports.PaymentIntent{
		IntentID:        intent.Data.ID,
		PaymentMethodID: method.Data.ID,
	}
	if attached.Data.Attributes.NextAction != nil {
		result.QRImageURL = attached.Data.Attributes.NextAction.Code.ImageURL
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out *apiResource) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ports.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("paymongo request %s failed: status %d: %s", path, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
