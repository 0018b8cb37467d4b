package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IntentResult is what a provider hands back when a payment intent is
// created. Card flows use the client secret, redirect flows the payment URL.
type IntentResult struct {
	TransactionID string
	ClientSecret  string
	RedirectURL   string
}

// Provider is one payment processor: it opens intents and answers
// server-to-server status checks.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*IntentResult, error)
	VerifyTransaction(ctx context.Context, transactionID string) (string, error)
}

// StripeClient talks to the card-network processor.
type StripeClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	log           zerolog.Logger
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	return &StripeClient{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       "https://api.stripe.com",
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		log:           logger.Get(),
	}
}

func (s *StripeClient) Name() string { return "stripe" }

func (s *StripeClient) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*IntentResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe create intent: status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("stripe create intent: decode: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("stripe create intent: response has no id")
	}
	return &IntentResult{TransactionID: out.ID, ClientSecret: out.ClientSecret}, nil
}

// VerifyTransaction fetches the payment intent and returns its raw status
// token.
func (s *StripeClient) VerifyTransaction(ctx context.Context, transactionID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/v1/payment_intents/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("stripe verify: status %d", resp.StatusCode)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("stripe verify: decode: %w", err)
	}
	return out.Status, nil
}

// VerifySignature checks the webhook signature header (t=<ts>,v1=<hmac>)
// against the raw payload. Returns true when no webhook secret is configured,
// since there is nothing to check against.
func (s *StripeClient) VerifySignature(payload []byte, header string) bool {
	if s.webhookSecret == "" {
		return true
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sig = kv[1]
		}
	}
	if ts == "" || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

// CinetPayClient talks to the mobile-money aggregator used for XOF and GNF.
type CinetPayClient struct {
	apiKey     string
	siteID     string
	baseURL    string
	notifyURL  string
	returnURL  string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewCinetPayClient(cfg config.CinetPayConfig) *CinetPayClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api-checkout.cinetpay.com"
	}
	return &CinetPayClient{
		apiKey:     cfg.APIKey,
		siteID:     cfg.SiteID,
		baseURL:    baseURL,
		notifyURL:  cfg.NotifyURL,
		returnURL:  cfg.ReturnURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.Get(),
	}
}

func (c *CinetPayClient) Name() string { return "cinetpay" }

// CreateIntent opens a hosted checkout. The aggregator has the merchant pick
// the transaction id, so one is minted here and becomes the payment key.
func (c *CinetPayClient) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*IntentResult, error) {
	transactionID := "cp_" + uuid.NewString()

	payload := map[string]interface{}{
		"apikey":         c.apiKey,
		"site_id":        c.siteID,
		"transaction_id": transactionID,
		"amount":         amount,
		"currency":       currency,
		"description":    "Frais de dossier Sooro Campus",
		"notify_url":     c.notifyURL,
		"return_url":     c.returnURL,
		"channels":       "ALL",
		"metadata":       metadata["user_id"],
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/payment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cinetpay create intent: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Code string `json:"code"`
		Data struct {
			PaymentURL string `json:"payment_url"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cinetpay create intent: decode: %w", err)
	}
	if out.Code != "201" || out.Data.PaymentURL == "" {
		return nil, fmt.Errorf("cinetpay create intent: code %s: %s", out.Code, out.Message)
	}

	return &IntentResult{TransactionID: transactionID, RedirectURL: out.Data.PaymentURL}, nil
}

// VerifyTransaction asks the aggregator's check endpoint for the real status
// of a transaction. Webhook bodies are never trusted without this call.
func (c *CinetPayClient) VerifyTransaction(ctx context.Context, transactionID string) (string, error) {
	payload := map[string]string{
		"apikey":         c.apiKey,
		"site_id":        c.siteID,
		"transaction_id": transactionID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/payment/check", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cinetpay verify: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out struct {
		Code string `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("cinetpay verify: decode: %w", err)
	}
	if out.Data.Status == "" {
		return "", fmt.Errorf("cinetpay verify: empty status (code %s)", out.Code)
	}
	return out.Data.Status, nil
}
