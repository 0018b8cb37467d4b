package database

import (
	"database/sql"
	"fmt"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

func CreateDocument(db *sql.DB, doc *models.Document) error {
	query := `INSERT INTO documents (user_id, dossier_id, type, sub_type, storage_path, file_name, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at`

	err := db.QueryRow(query,
		doc.UserID, doc.DossierID, string(doc.Type), doc.SubType,
		doc.StoragePath, doc.FileName, string(models.DocumentPending),
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	doc.Status = models.DocumentPending
	return nil
}

func GetDocumentByID(db *sql.DB, documentID string) (*models.Document, error) {
	doc := &models.Document{}
	query := `SELECT id, user_id, dossier_id, type, sub_type, storage_path, file_name, status, created_at
			  FROM documents WHERE id = $1`

	err := db.QueryRow(query, documentID).Scan(
		&doc.ID, &doc.UserID, &doc.DossierID, &doc.Type, &doc.SubType,
		&doc.StoragePath, &doc.FileName, &doc.Status, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func GetDocumentsByUserID(db *sql.DB, userID string) ([]*models.Document, error) {
	query := `SELECT id, user_id, dossier_id, type, sub_type, storage_path, file_name, status, created_at
			  FROM documents
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID, &doc.UserID, &doc.DossierID, &doc.Type, &doc.SubType,
			&doc.StoragePath, &doc.FileName, &doc.Status, &doc.CreatedAt,
		)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func DeleteDocument(db *sql.DB, documentID string) error {
	res, err := db.Exec(`DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
