package payments

import (
	"testing"

	"github.com/MouctarBahLk/soorocampus-sub001/app/billing"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

func TestParseWebhookPayload_StripeEnvelope(t *testing.T) {
	body := []byte(`{
		"id": "evt_123",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_abc", "status": "succeeded", "amount": 9000}}
	}`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Provider != billing.ProviderStripe {
		t.Errorf("provider = %s, want stripe", ev.Provider)
	}
	if ev.TransactionID != "pi_abc" {
		t.Errorf("transaction id = %s, want pi_abc", ev.TransactionID)
	}
	if ev.RawStatus != "succeeded" {
		t.Errorf("raw status = %s, want succeeded", ev.RawStatus)
	}
}

func TestParseWebhookPayload_StripeEnvelopeWithoutObjectStatus(t *testing.T) {
	// Some events carry a partial object; the event type still names the
	// outcome.
	body := []byte(`{"type": "payment_intent.payment_failed", "data": {"object": {"id": "pi_def"}}}`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.RawStatus != "payment_failed" {
		t.Errorf("raw status = %s, want payment_failed", ev.RawStatus)
	}
	if ClassifyStatus(ev.RawStatus) != models.PaymentFailed {
		t.Error("payment_failed should classify as failed")
	}
}

func TestParseWebhookPayload_CinetPayJSON(t *testing.T) {
	body := []byte(`{"cpm_trans_id": "cp_42", "cpm_trans_status": "ACCEPTED", "cpm_amount": "60000"}`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Provider != billing.ProviderCinetPay {
		t.Errorf("provider = %s, want cinetpay", ev.Provider)
	}
	if ev.TransactionID != "cp_42" {
		t.Errorf("transaction id = %s, want cp_42", ev.TransactionID)
	}
	if ev.RawStatus != "ACCEPTED" {
		t.Errorf("raw status = %s, want ACCEPTED", ev.RawStatus)
	}
}

func TestParseWebhookPayload_CinetPayResultFallback(t *testing.T) {
	body := []byte(`{"cpm_trans_id": "cp_43", "cpm_result": "REFUSED"}`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.RawStatus != "REFUSED" {
		t.Errorf("raw status = %s, want REFUSED", ev.RawStatus)
	}
}

func TestParseWebhookPayload_GenericJSON(t *testing.T) {
	body := []byte(`{"transaction_id": "tx_9", "status": "SUCCESS"}`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.TransactionID != "tx_9" || ev.RawStatus != "SUCCESS" {
		t.Errorf("got %+v", ev)
	}
}

func TestParseWebhookPayload_FormEncoded(t *testing.T) {
	body := []byte(`cpm_trans_id=cp_44&cpm_trans_status=CANCELED&cpm_currency=XOF`)

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Provider != billing.ProviderCinetPay {
		t.Errorf("provider = %s, want cinetpay", ev.Provider)
	}
	if ev.TransactionID != "cp_44" {
		t.Errorf("transaction id = %s, want cp_44", ev.TransactionID)
	}
	if ClassifyStatus(ev.RawStatus) != models.PaymentFailed {
		t.Error("CANCELED should classify as failed")
	}
}

func TestParseWebhookPayload_Rejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"json without id", `{"type": "ping", "data": {}}`},
		{"form without id", `foo=bar&status=ACCEPTED`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseWebhookPayload([]byte(tc.body)); err == nil {
				t.Errorf("expected error for %q", tc.body)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		token string
		want  models.PaymentStatus
	}{
		{"ACCEPTED", models.PaymentSucceeded},
		{"accepted", models.PaymentSucceeded},
		{"succeeded", models.PaymentSucceeded},
		{"PAYMENT_COMPLETED", models.PaymentSucceeded},
		{"PAID", models.PaymentSucceeded},
		{"REFUSED", models.PaymentFailed},
		{"payment_failed", models.PaymentFailed},
		{"canceled", models.PaymentFailed},
		{"DECLINED", models.PaymentFailed},
		{"ECHEC_PAIEMENT", models.PaymentFailed},
		{"WAITING_FOR_CUSTOMER", models.PaymentPending},
		{"requires_payment_method", models.PaymentPending},
		{"processing", models.PaymentPending},
		{"", models.PaymentPending},
		{"garbage", models.PaymentPending},
	}
	for _, tc := range cases {
		if got := ClassifyStatus(tc.token); got != tc.want {
			t.Errorf("ClassifyStatus(%q) = %s, want %s", tc.token, got, tc.want)
		}
	}
}
