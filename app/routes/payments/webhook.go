package payments

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MouctarBahLk/soorocampus-sub001/app/billing"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

// WebhookEvent is the normalized form of a provider callback: which provider
// sent it, which transaction it is about, and the raw status token to
// classify. Providers nest these fields differently, so parsing goes through
// one variant per known payload shape instead of probing optional fields.
type WebhookEvent struct {
	Provider      string
	TransactionID string
	RawStatus     string
}

// stripeEnvelope is the card processor's event wrapper.
type stripeEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// cinetpayNotify is the aggregator's flat JSON notification.
type cinetpayNotify struct {
	TransID     string `json:"cpm_trans_id"`
	TransStatus string `json:"cpm_trans_status"`
	Result      string `json:"cpm_result"`
}

// genericNotify covers aggregator variants that send plain
// transaction_id/status pairs.
type genericNotify struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// ParseWebhookPayload normalizes a raw callback body into a WebhookEvent.
// It tries each known payload shape in turn; form-encoded bodies (the
// aggregator posts those too) are handled last.
func ParseWebhookPayload(body []byte) (*WebhookEvent, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("empty webhook payload")
	}

	if strings.HasPrefix(trimmed, "{") {
		var env stripeEnvelope
		if err := json.Unmarshal(body, &env); err == nil &&
			strings.HasPrefix(env.Type, "payment_intent.") && env.Data.Object.ID != "" {
			status := env.Data.Object.Status
			if status == "" {
				// Event type carries the outcome when the object is partial.
				status = strings.TrimPrefix(env.Type, "payment_intent.")
			}
			return &WebhookEvent{
				Provider:      billing.ProviderStripe,
				TransactionID: env.Data.Object.ID,
				RawStatus:     status,
			}, nil
		}

		var cp cinetpayNotify
		if err := json.Unmarshal(body, &cp); err == nil && cp.TransID != "" {
			status := cp.TransStatus
			if status == "" {
				status = cp.Result
			}
			return &WebhookEvent{
				Provider:      billing.ProviderCinetPay,
				TransactionID: cp.TransID,
				RawStatus:     status,
			}, nil
		}

		var gen genericNotify
		if err := json.Unmarshal(body, &gen); err == nil && gen.TransactionID != "" {
			return &WebhookEvent{
				Provider:      billing.ProviderCinetPay,
				TransactionID: gen.TransactionID,
				RawStatus:     gen.Status,
			}, nil
		}

		return nil, fmt.Errorf("unrecognized webhook payload shape")
	}

	// Form-encoded fallback.
	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("unparseable webhook payload: %w", err)
	}
	transID := values.Get("cpm_trans_id")
	if transID == "" {
		transID = values.Get("transaction_id")
	}
	if transID == "" {
		return nil, fmt.Errorf("webhook payload has no transaction id")
	}
	status := values.Get("cpm_trans_status")
	if status == "" {
		status = values.Get("cpm_result")
	}
	if status == "" {
		status = values.Get("status")
	}
	return &WebhookEvent{
		Provider:      billing.ProviderCinetPay,
		TransactionID: transID,
		RawStatus:     status,
	}, nil
}

// failureKeywords and successKeywords drive status classification. Both
// providers express outcomes as free-form tokens; matching on the stable
// keyword fragments keeps new token variants from landing in the wrong
// bucket. Anything matching neither list stays pending.
var (
	failureKeywords = []string{"REFUS", "FAIL", "CANCEL", "DECLIN", "ECHEC"}
	successKeywords = []string{"ACCEPT", "SUCCE", "COMPLET", "PAID"}
)

// ClassifyStatus maps a provider status token onto the payment state machine.
func ClassifyStatus(token string) models.PaymentStatus {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if upper == "" {
		return models.PaymentPending
	}
	for _, kw := range failureKeywords {
		if strings.Contains(upper, kw) {
			return models.PaymentFailed
		}
	}
	for _, kw := range successKeywords {
		if strings.Contains(upper, kw) {
			return models.PaymentSucceeded
		}
	}
	return models.PaymentPending
}
