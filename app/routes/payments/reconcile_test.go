package payments

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/MouctarBahLk/soorocampus-sub001/app/billing"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"

	"github.com/rs/zerolog"
)

// fakePaymentStore is an in-memory PaymentStore that counts transitions.
type fakePaymentStore struct {
	payments    map[string]*models.PaymentAttempt
	transitions int
	userStatus  map[string]models.PaidStatus
}

func newFakeStore(attempts ...*models.PaymentAttempt) *fakePaymentStore {
	s := &fakePaymentStore{
		payments:   make(map[string]*models.PaymentAttempt),
		userStatus: make(map[string]models.PaidStatus),
	}
	for _, p := range attempts {
		s.payments[p.ID] = p
	}
	return s
}

func (s *fakePaymentStore) GetPayment(id string) (*models.PaymentAttempt, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *fakePaymentStore) MarkPaymentIfPending(id string, status models.PaymentStatus) (bool, error) {
	p, ok := s.payments[id]
	if !ok {
		return false, nil
	}
	if p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = status
	s.transitions++
	return true, nil
}

func (s *fakePaymentStore) SetUserPaymentStatus(userID string, status models.PaidStatus) error {
	s.userStatus[userID] = status
	return nil
}

// fakeVerifier answers the server-to-server check with a fixed token or error.
type fakeVerifier struct {
	token string
	err   error
	calls int
}

func (v *fakeVerifier) VerifyTransaction(ctx context.Context, id string) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return v.token, nil
}

func newTestReconciler(store PaymentStore, verifier Verifier) *Reconciler {
	verifiers := map[string]Verifier{}
	if verifier != nil {
		verifiers[billing.ProviderCinetPay] = verifier
	}
	return &Reconciler{
		Store:     store,
		Verifiers: verifiers,
		Log:       zerolog.Nop(),
	}
}

func pendingAttempt(id, userID string) *models.PaymentAttempt {
	return &models.PaymentAttempt{
		ID:       id,
		UserID:   userID,
		Amount:   60000,
		Currency: "XOF",
		Status:   models.PaymentPending,
		Method:   models.MethodMobileMoney,
		Provider: billing.ProviderCinetPay,
	}
}

func TestApply_DuplicateWebhookSingleTransition(t *testing.T) {
	store := newFakeStore(pendingAttempt("tx_1", "user_1"))
	r := newTestReconciler(store, &fakeVerifier{token: "ACCEPTED"})

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_1", RawStatus: "ACCEPTED"}
	for i := 0; i < 2; i++ {
		if err := r.Apply(context.Background(), ev); err != nil {
			t.Fatalf("apply %d: %v", i+1, err)
		}
	}

	if got := store.payments["tx_1"].Status; got != models.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", got)
	}
	if store.transitions != 1 {
		t.Errorf("transitions = %d, want exactly 1", store.transitions)
	}
	if store.userStatus["user_1"] != models.PaidFull {
		t.Errorf("user payment flag = %s, want full", store.userStatus["user_1"])
	}
}

func TestApply_TerminalStateGuard(t *testing.T) {
	p := pendingAttempt("tx_2", "user_1")
	p.Status = models.PaymentSucceeded
	store := newFakeStore(p)
	r := newTestReconciler(store, &fakeVerifier{token: "REFUSED"})

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_2", RawStatus: "REFUSED"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if got := store.payments["tx_2"].Status; got != models.PaymentSucceeded {
		t.Errorf("a failed webhook must not regress a succeeded payment, got %s", got)
	}
	if store.transitions != 0 {
		t.Errorf("transitions = %d, want 0", store.transitions)
	}
}

func TestApply_VerificationUnreachableFailsClosed(t *testing.T) {
	store := newFakeStore(pendingAttempt("tx_3", "user_1"))
	verifier := &fakeVerifier{err: errors.New("connection refused")}
	r := newTestReconciler(store, verifier)

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_3", RawStatus: "ACCEPTED"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if verifier.calls != 1 {
		t.Errorf("verifier calls = %d, want 1", verifier.calls)
	}
	if got := store.payments["tx_3"].Status; got != models.PaymentPending {
		t.Errorf("payment must stay pending when verification is unreachable, got %s", got)
	}
	if store.transitions != 0 {
		t.Errorf("transitions = %d, want 0", store.transitions)
	}
}

func TestApply_VerificationSupersedesWebhook(t *testing.T) {
	// Webhook claims success, the check endpoint says refused: the verified
	// status wins.
	store := newFakeStore(pendingAttempt("tx_4", "user_1"))
	r := newTestReconciler(store, &fakeVerifier{token: "REFUSED"})

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_4", RawStatus: "ACCEPTED"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if got := store.payments["tx_4"].Status; got != models.PaymentFailed {
		t.Errorf("status = %s, want failed (verification result)", got)
	}
	if _, flagged := store.userStatus["user_1"]; flagged {
		t.Error("user payment flag must not be set on a failed payment")
	}
}

func TestApply_UnknownTransactionIgnored(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store, &fakeVerifier{token: "ACCEPTED"})

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_missing", RawStatus: "ACCEPTED"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatalf("unknown transaction ids must not be errors, got %v", err)
	}
	if store.transitions != 0 {
		t.Errorf("transitions = %d, want 0", store.transitions)
	}
}

func TestApply_PendingTokenWritesNothing(t *testing.T) {
	store := newFakeStore(pendingAttempt("tx_5", "user_1"))
	r := newTestReconciler(store, &fakeVerifier{token: "WAITING_FOR_CUSTOMER"})

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_5", RawStatus: "WAITING_FOR_CUSTOMER"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if store.transitions != 0 {
		t.Errorf("transitions = %d, want 0", store.transitions)
	}
}

func TestApply_NoVerifierTrustsWebhook(t *testing.T) {
	// A provider with no check endpoint registered is applied directly.
	store := newFakeStore(pendingAttempt("tx_6", "user_2"))
	r := newTestReconciler(store, nil)

	ev := &WebhookEvent{Provider: billing.ProviderCinetPay, TransactionID: "tx_6", RawStatus: "PAYMENT_FAILED"}
	if err := r.Apply(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if got := store.payments["tx_6"].Status; got != models.PaymentFailed {
		t.Errorf("status = %s, want failed", got)
	}
}

func TestReverify_SettlesStalePending(t *testing.T) {
	p := pendingAttempt("tx_7", "user_3")
	store := newFakeStore(p)
	r := newTestReconciler(store, &fakeVerifier{token: "ACCEPTED"})

	if err := r.Reverify(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if got := store.payments["tx_7"].Status; got != models.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", got)
	}
	if store.userStatus["user_3"] != models.PaidFull {
		t.Errorf("user payment flag = %s, want full", store.userStatus["user_3"])
	}
}

func TestReverify_UnreachableProviderLeavesPending(t *testing.T) {
	p := pendingAttempt("tx_8", "user_3")
	store := newFakeStore(p)
	r := newTestReconciler(store, &fakeVerifier{err: errors.New("timeout")})

	if err := r.Reverify(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if got := store.payments["tx_8"].Status; got != models.PaymentPending {
		t.Errorf("status = %s, want pending", got)
	}
}
