package dossier

import (
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"
	"github.com/MouctarBahLk/soorocampus-sub001/app/storage"

	"github.com/gofiber/fiber/v2"
)

var store storage.ObjectStore

func SetupDossierRoutes(app *fiber.App, objStore storage.ObjectStore) {
	store = objStore

	api := app.Group("/api/dossier", auth.AuthMiddleware)
	api.Post("/documents", UploadDocumentAPI)
	api.Get("/documents", ListMyDocumentsAPI)
	api.Delete("/documents/:id", DeleteDocumentAPI)
	api.Get("/status", DossierStatusAPI)
	api.Post("/submit", SubmitDossierAPI)

	admin := app.Group("/api/admin/dossiers", auth.AuthMiddleware, auth.RequireRole(auth.RoleAdmin))
	admin.Get("/", ListPendingDossiersAPI)
	admin.Get("/:userId/documents", AdminListDocumentsAPI)
	admin.Post("/:id/review", ReviewDossierAPI)
}
