package payments

import (
	"context"
	"database/sql"

	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"

	"github.com/rs/zerolog"
)

// PaymentStore is the slice of persistence the reconciler needs. The
// conditional MarkPaymentIfPending is the terminal-state guard: it must only
// write when the row is still pending, so redelivered callbacks and racing
// writers collapse into exactly one transition.
type PaymentStore interface {
	GetPayment(id string) (*models.PaymentAttempt, error)
	MarkPaymentIfPending(id string, status models.PaymentStatus) (bool, error)
	SetUserPaymentStatus(userID string, status models.PaidStatus) error
}

// Verifier answers a server-to-server status check for one provider.
type Verifier interface {
	VerifyTransaction(ctx context.Context, transactionID string) (string, error)
}

// Reconciler applies provider callbacks (and scheduler re-checks) to the
// payment state machine.
type Reconciler struct {
	Store     PaymentStore
	Verifiers map[string]Verifier
	Log       zerolog.Logger

	// Notify is called after a payment settles successfully. Optional.
	Notify func(p *models.PaymentAttempt)
}

// Apply reconciles one normalized webhook event. Contract:
//   - the provider's check endpoint is consulted before the webhook body is
//     trusted; if it is unreachable the payment stays pending (fail-closed)
//   - an unknown transaction id is logged and ignored, not an error
//     (providers send callbacks for test traffic too)
//   - a payment already in a terminal state absorbs the write as a no-op
func (r *Reconciler) Apply(ctx context.Context, ev *WebhookEvent) error {
	status := ClassifyStatus(ev.RawStatus)

	if verifier, ok := r.Verifiers[ev.Provider]; ok {
		token, err := verifier.VerifyTransaction(ctx, ev.TransactionID)
		if err != nil {
			r.Log.Warn().Err(err).
				Str("provider", ev.Provider).
				Str("transaction_id", ev.TransactionID).
				Msg("Provider verification unreachable, leaving payment pending")
			return nil
		}
		// The verified status supersedes whatever the webhook claimed.
		status = ClassifyStatus(token)
	}

	if status == models.PaymentPending {
		r.Log.Debug().
			Str("transaction_id", ev.TransactionID).
			Str("raw_status", ev.RawStatus).
			Msg("Webhook resolved to pending, nothing to apply")
		return nil
	}

	payment, err := r.Store.GetPayment(ev.TransactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			r.Log.Info().
				Str("provider", ev.Provider).
				Str("transaction_id", ev.TransactionID).
				Msg("Webhook for unknown transaction, ignoring")
			return nil
		}
		return err
	}

	return r.applyStatus(payment, status)
}

// Reverify re-checks one stale pending payment directly against its
// provider. Used by the background sweep for payments whose webhook never
// arrived. Same fail-closed rule as Apply: an unreachable provider changes
// nothing.
func (r *Reconciler) Reverify(ctx context.Context, payment *models.PaymentAttempt) error {
	verifier, ok := r.Verifiers[payment.Provider]
	if !ok {
		return nil
	}

	token, err := verifier.VerifyTransaction(ctx, payment.ID)
	if err != nil {
		r.Log.Debug().Err(err).
			Str("transaction_id", payment.ID).
			Msg("Re-verification unreachable, payment stays pending")
		return nil
	}

	status := ClassifyStatus(token)
	if status == models.PaymentPending {
		return nil
	}
	return r.applyStatus(payment, status)
}

// applyStatus performs the guarded terminal transition and its follow-ups.
func (r *Reconciler) applyStatus(payment *models.PaymentAttempt, status models.PaymentStatus) error {
	applied, err := r.Store.MarkPaymentIfPending(payment.ID, status)
	if err != nil {
		return err
	}
	if !applied {
		r.Log.Debug().
			Str("transaction_id", payment.ID).
			Str("current_status", string(payment.Status)).
			Msg("Payment already terminal, update ignored")
		return nil
	}

	r.Log.Info().
		Str("transaction_id", payment.ID).
		Str("provider", payment.Provider).
		Str("status", string(status)).
		Msg("Payment status reconciled")

	if status == models.PaymentSucceeded {
		if err := r.Store.SetUserPaymentStatus(payment.UserID, models.PaidFull); err != nil {
			r.Log.Warn().Err(err).Str("user_id", payment.UserID).
				Msg("Failed to update user payment flag after settlement")
		}
		if r.Notify != nil {
			r.Notify(payment)
		}
	}
	return nil
}

// dbPaymentStore adapts the database package to the PaymentStore interface.
type dbPaymentStore struct {
	db *sql.DB
}

func NewDBPaymentStore(db *sql.DB) PaymentStore {
	return &dbPaymentStore{db: db}
}

func (s *dbPaymentStore) GetPayment(id string) (*models.PaymentAttempt, error) {
	return database.GetPaymentByID(s.db, id)
}

func (s *dbPaymentStore) MarkPaymentIfPending(id string, status models.PaymentStatus) (bool, error) {
	return database.MarkPaymentIfPending(s.db, id, status)
}

func (s *dbPaymentStore) SetUserPaymentStatus(userID string, status models.PaidStatus) error {
	return database.SetUserPaymentStatus(s.db, userID, status)
}
