package dossier

import (
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"
	"github.com/MouctarBahLk/soorocampus-sub001/app/mailer"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// UploadDocumentAPI stores one document: bytes first, row second. A storage
// failure leaves no row behind; an insert failure after a successful write
// orphans the blob, which the periodic cleanup reclaims.
func UploadDocumentAPI(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Not authenticated", "code": "unauthenticated"})
	}

	docType := models.DocumentType(c.FormValue("type"))
	subType := strings.TrimSpace(c.FormValue("sub_type"))

	known := false
	for _, t := range models.KnownDocumentTypes {
		if docType == t {
			known = true
			break
		}
	}
	if !known {
		return c.Status(400).JSON(fiber.Map{"error": "Unrecognized document type", "code": "validation_error"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "A file is required", "code": "validation_error"})
	}
	if fileHeader.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "File is empty", "code": "validation_error"})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(400).JSON(fiber.Map{"error": "File exceeds the 10 MB limit", "code": "validation_error"})
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return c.Status(400).JSON(fiber.Map{"error": "Only PDF, JPEG and PNG files are accepted", "code": "validation_error"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Unreadable file", "code": "validation_error"})
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Unreadable file", "code": "validation_error"})
	}

	// Lazy dossier creation; concurrent first uploads collapse onto one row.
	d, err := database.CreateDossierIfAbsent(config.GetDB(), user.ID, inferIsTerminale(docType, subType))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to prepare dossier", "code": "external_service_failure"})
	}

	// Timestamp plus random token keeps concurrent uploads of same-named
	// files from overwriting each other.
	key := fmt.Sprintf("documents/%s/%d_%s%s",
		user.ID, time.Now().UnixNano(), uuid.NewString()[:8], sanitizeExt(fileHeader.Filename))
	if err := store.Put(c.Context(), key, data, contentType); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("user_id", user.ID).Msg("Document upload to storage failed")
		return c.Status(502).JSON(fiber.Map{"error": "File storage is unavailable, try again", "code": "external_service_failure"})
	}

	doc := &models.Document{
		UserID:      user.ID,
		DossierID:   d.ID,
		Type:        docType,
		SubType:     subType,
		StoragePath: key,
		FileName:    filepath.Base(fileHeader.Filename),
	}
	if err := database.CreateDocument(config.GetDB(), doc); err != nil {
		// Orphaned blob: acceptable, reclaimed out of band.
		zl := logger.Get()
		zl.Error().Err(err).Str("key", key).Msg("Document row insert failed after storage write")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save document", "code": "external_service_failure"})
	}

	if d.Status == models.DossierInProgress {
		if err := database.UpdateDossierStatus(config.GetDB(), d.ID, models.DossierAwaitingReview); err != nil {
			zl := logger.Get()
			zl.Warn().Err(err).Str("dossier_id", d.ID).Msg("Failed to advance dossier status after upload")
		}
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": doc})
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		return ""
	}
	return ext
}

// DossierStatusAPI reports the completeness verdict without side effects.
func DossierStatusAPI(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)

	d, err := database.GetDossierByUserID(config.GetDB(), user.ID)
	if err == sql.ErrNoRows {
		verdict := Evaluate(nil, false, config.Get().App.CampaignYear)
		return c.JSON(fiber.Map{
			"success":     true,
			"status":      "not_created",
			"is_complete": false,
			"breakdown":   verdict.Breakdown,
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	docs, err := database.GetDocumentsByUserID(config.GetDB(), user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	verdict := Evaluate(docs, d.IsTerminale, config.Get().App.CampaignYear)
	return c.JSON(fiber.Map{
		"success":     true,
		"status":      d.Status,
		"is_complete": verdict.Complete,
		"breakdown":   verdict.Breakdown,
	})
}

// SubmitDossierAPI gate-keeps the pending-review transition. Documents are
// re-fetched server side so a stale client can never submit an incomplete
// dossier.
func SubmitDossierAPI(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)

	d, err := database.GetDossierByUserID(config.GetDB(), user.ID)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "No dossier to submit", "code": "not_found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	docs, err := database.GetDocumentsByUserID(config.GetDB(), user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	verdict := Evaluate(docs, d.IsTerminale, config.Get().App.CampaignYear)
	if !verdict.Complete {
		return c.Status(400).JSON(fiber.Map{
			"error":     "Your dossier is incomplete",
			"code":      "incomplete",
			"breakdown": verdict.Breakdown,
		})
	}

	if err := database.SubmitDossier(config.GetDB(), user.ID); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("user_id", user.ID).Msg("Dossier submission failed")
		return c.Status(500).JSON(fiber.Map{"error": "Submission failed, no changes were made", "code": "external_service_failure"})
	}

	mailer.SendAsync(user.Email, mailer.TemplateDossierSubmitted, map[string]string{
		"first_name": user.FirstName,
	})

	return c.JSON(fiber.Map{"success": true, "status": models.DossierPendingReview})
}

func ListMyDocumentsAPI(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)
	docs, err := database.GetDocumentsByUserID(config.GetDB(), user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}
	return c.JSON(fiber.Map{"success": true, "data": docs})
}

// DeleteDocumentAPI removes a document row, then best-effort removes the
// stored bytes. Only the owner or an admin may delete.
func DeleteDocumentAPI(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)
	docID := c.Params("id")

	doc, err := database.GetDocumentByID(config.GetDB(), docID)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Document not found", "code": "not_found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	if doc.UserID != user.ID && !user.HasRole(auth.RoleAdmin) {
		return c.Status(403).JSON(fiber.Map{"error": "You cannot delete this document", "code": "forbidden"})
	}

	if err := database.DeleteDocument(config.GetDB(), docID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete document", "code": "external_service_failure"})
	}

	if err := store.Remove(c.Context(), doc.StoragePath); err != nil {
		zl := logger.Get()
		zl.Warn().Err(err).Str("key", doc.StoragePath).Msg("Failed to remove stored file")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListPendingDossiersAPI returns dossiers awaiting an admin decision.
func ListPendingDossiersAPI(c *fiber.Ctx) error {
	dossiers, owners, err := database.ListDossiersByStatus(config.GetDB(), models.DossierPendingReview)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	type entry struct {
		Dossier *models.Dossier `json:"dossier"`
		Student *models.User    `json:"student"`
	}
	out := make([]entry, 0, len(dossiers))
	for _, d := range dossiers {
		out = append(out, entry{Dossier: d, Student: owners[d.ID]})
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

// AdminListDocumentsAPI lists a student's documents with short-lived signed
// preview URLs. A signing failure degrades to no URL, never an error.
func AdminListDocumentsAPI(c *fiber.Ctx) error {
	studentID := c.Params("userId")
	docs, err := database.GetDocumentsByUserID(config.GetDB(), studentID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	type docWithURL struct {
		*models.Document
		PreviewURL string `json:"preview_url,omitempty"`
	}
	out := make([]docWithURL, 0, len(docs))
	for _, doc := range docs {
		url, err := store.SignedURL(doc.StoragePath, 15*time.Minute)
		if err != nil {
			zl := logger.Get()
			zl.Warn().Err(err).Str("key", doc.StoragePath).Msg("Failed to sign preview URL")
			url = ""
		}
		out = append(out, docWithURL{Document: doc, PreviewURL: url})
	}
	return c.JSON(fiber.Map{"success": true, "data": out})
}

// ReviewDossierAPI records the admin accept/reject decision and notifies the
// student by email.
func ReviewDossierAPI(c *fiber.Ctx) error {
	dossierID := c.Params("id")

	type reviewRequest struct {
		Decision string `json:"decision"`
	}
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "validation_error"})
	}

	var status models.DossierStatus
	var template mailer.TemplateKind
	switch req.Decision {
	case "accepted":
		status, template = models.DossierAccepted, mailer.TemplateDossierAccepted
	case "rejected":
		status, template = models.DossierRejected, mailer.TemplateDossierRejected
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Decision must be accepted or rejected", "code": "validation_error"})
	}

	if err := database.UpdateDossierStatus(config.GetDB(), dossierID, status); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Dossier not found", "code": "not_found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update dossier", "code": "external_service_failure"})
	}

	// Notify the student; a lookup failure only skips the email.
	if dossiers, owners, err := database.ListDossiersByStatus(config.GetDB(), status); err == nil {
		for _, d := range dossiers {
			if d.ID == dossierID {
				if student := owners[d.ID]; student != nil {
					mailer.SendAsync(student.Email, template, map[string]string{"first_name": student.FirstName})
				}
				break
			}
		}
	}

	return c.JSON(fiber.Map{"success": true, "status": status})
}
