package models

import "time"

// PaymentAttempt represents one payment lifecycle instance. The primary key
// is the provider-issued transaction id, so redelivered provider callbacks
// can never create a second row for the same transaction.
type PaymentAttempt struct {
	ID          string        `json:"id" validate:"required"`
	UserID      string        `json:"user_id" validate:"required,uuid"`
	Amount      int64         `json:"amount" validate:"required,gt=0"` // minor currency units
	Currency    string        `json:"currency" validate:"required"`
	Status      PaymentStatus `json:"status"`
	Method      PaymentMethod `json:"method"`
	Provider    string        `json:"provider"`
	ReceiptPath *string       `json:"receipt_path,omitempty"`
	ValidatedBy *string       `json:"validated_by,omitempty"` // admin id on manual validation rows
	CreatedAt   time.Time     `json:"created_at"`
}

// IsTerminal reports whether the attempt reached a final state. Terminal
// attempts absorb any further status writes.
func (p *PaymentAttempt) IsTerminal() bool {
	return p.Status == PaymentSucceeded || p.Status == PaymentFailed
}
