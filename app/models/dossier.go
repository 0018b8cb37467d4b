package models

import "time"

// Dossier represents one student's candidacy package. At most one exists per
// user; it is created lazily on the first document upload.
type Dossier struct {
	ID          string        `json:"id" validate:"required,uuid"`
	UserID      string        `json:"user_id" validate:"required,uuid"`
	IsTerminale bool          `json:"is_terminale"`
	Status      DossierStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
