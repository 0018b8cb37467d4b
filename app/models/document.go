package models

import "time"

// Document represents one uploaded file tied to a dossier. The storage path
// is an opaque object-store key, never a public URL.
type Document struct {
	ID          string         `json:"id" validate:"required,uuid"`
	UserID      string         `json:"user_id" validate:"required,uuid"`
	DossierID   string         `json:"dossier_id" validate:"required,uuid"`
	Type        DocumentType   `json:"type" validate:"required"`
	SubType     string         `json:"sub_type,omitempty"`
	StoragePath string         `json:"-"`
	FileName    string         `json:"file_name"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
