package models

// DocumentType defines the recognized declared types for an uploaded document.
type DocumentType string

const (
	DocPhotoIdentite DocumentType = "photo_identite"
	DocCV            DocumentType = "cv"
	DocPasseport     DocumentType = "passeport"
	DocReleveNotes   DocumentType = "releve_notes"
	DocDiplome       DocumentType = "diplome"
)

// KnownDocumentTypes lists every accepted document type for upload validation.
var KnownDocumentTypes = []DocumentType{
	DocPhotoIdentite, DocCV, DocPasseport, DocReleveNotes, DocDiplome,
}

// DocumentStatus defines the lifecycle status of a document.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentSubmitted DocumentStatus = "submitted"
)

// DossierStatus defines the overall status of a candidacy dossier.
// Absence of a row means the dossier has not been created yet.
type DossierStatus string

const (
	DossierInProgress     DossierStatus = "in_progress"
	DossierAwaitingReview DossierStatus = "awaiting_review"
	DossierPendingReview  DossierStatus = "pending_review"
	DossierAccepted       DossierStatus = "accepted"
	DossierRejected       DossierStatus = "rejected"
)

// PaymentStatus defines the status of a payment attempt.
// pending is initial; succeeded and failed are terminal.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentMethod defines how a payment was made.
type PaymentMethod string

const (
	MethodCard             PaymentMethod = "card"
	MethodMobileMoney      PaymentMethod = "mobile_money"
	MethodManualValidation PaymentMethod = "manual_validation"
)

// PaidStatus is the per-user payment flag an admin may set manually.
type PaidStatus string

const (
	PaidNone    PaidStatus = "none"
	PaidPartial PaidStatus = "partial"
	PaidFull    PaidStatus = "full"
)
