package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
	"github.com/lib/pq"
)

// InsertPaymentAttempt records a payment attempt keyed by the provider
// transaction id. A conflict on the id means a row already exists for this
// transaction (e.g. a webhook arrived before the intent response was stored);
// in that case the existing row is refreshed instead of erroring.
func InsertPaymentAttempt(db *sql.DB, p *models.PaymentAttempt) error {
	query := `INSERT INTO payments (id, user_id, amount, currency, status, method, provider, receipt_path, validated_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING created_at`

	err := db.QueryRow(query,
		p.ID, p.UserID, p.Amount, p.Currency, string(p.Status),
		string(p.Method), p.Provider, p.ReceiptPath, p.ValidatedBy,
	).Scan(&p.CreatedAt)
	if err == nil {
		return nil
	}

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		_, uerr := db.Exec(`UPDATE payments SET amount = $2, currency = $3, method = $4, provider = $5
							WHERE id = $1`,
			p.ID, p.Amount, p.Currency, string(p.Method), p.Provider)
		if uerr != nil {
			return fmt.Errorf("failed to refresh existing payment %s: %w", p.ID, uerr)
		}
		return nil
	}
	return fmt.Errorf("failed to insert payment: %w", err)
}

func GetPaymentByID(db *sql.DB, id string) (*models.PaymentAttempt, error) {
	p := &models.PaymentAttempt{}
	query := `SELECT id, user_id, amount, currency, status, method, provider, receipt_path, validated_by, created_at
			  FROM payments WHERE id = $1`

	err := db.QueryRow(query, id).Scan(
		&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Status,
		&p.Method, &p.Provider, &p.ReceiptPath, &p.ValidatedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaymentIfPending flips the payment to the given terminal status only if
// it is still pending. The conditional WHERE is what makes concurrent webhook
// redeliveries safe: both read pending, one wins the update, the other sees
// zero rows affected and treats the write as a no-op.
func MarkPaymentIfPending(db *sql.DB, id string, status models.PaymentStatus) (bool, error) {
	res, err := db.Exec(`UPDATE payments SET status = $2 WHERE id = $1 AND status = $3`,
		id, string(status), string(models.PaymentPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func GetPaymentsByUserID(db *sql.DB, userID string) ([]*models.PaymentAttempt, error) {
	query := `SELECT id, user_id, amount, currency, status, method, provider, receipt_path, validated_by, created_at
			  FROM payments
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	return scanPayments(db.Query(query, userID))
}

// ListPayments returns all payment attempts, optionally filtered by status,
// newest first.
func ListPayments(db *sql.DB, status string) ([]*models.PaymentAttempt, error) {
	query := `SELECT id, user_id, amount, currency, status, method, provider, receipt_path, validated_by, created_at
			  FROM payments`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return scanPayments(db.Query(query, args...))
}

// ListStalePendingPayments returns pending attempts older than the cutoff,
// used by the scheduler to re-verify payments whose webhook never arrived.
func ListStalePendingPayments(db *sql.DB, olderThan time.Duration) ([]*models.PaymentAttempt, error) {
	query := `SELECT id, user_id, amount, currency, status, method, provider, receipt_path, validated_by, created_at
			  FROM payments
			  WHERE status = 'pending' AND created_at < $1
			  ORDER BY created_at ASC`
	return scanPayments(db.Query(query, time.Now().Add(-olderThan)))
}

func scanPayments(rows *sql.Rows, err error) ([]*models.PaymentAttempt, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.PaymentAttempt
	for rows.Next() {
		p := &models.PaymentAttempt{}
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Status,
			&p.Method, &p.Provider, &p.ReceiptPath, &p.ValidatedBy, &p.CreatedAt,
		)
		if err != nil {
			continue
		}
		payments = append(payments, p)
	}
	return payments, nil
}
