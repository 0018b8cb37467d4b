package database

import (
	"database/sql"
	"fmt"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
	"github.com/lib/pq"
)

func GetDossierByUserID(db *sql.DB, userID string) (*models.Dossier, error) {
	d := &models.Dossier{}
	query := `SELECT id, user_id, is_terminale, status, created_at, updated_at
			  FROM dossiers WHERE user_id = $1`

	err := db.QueryRow(query, userID).Scan(
		&d.ID, &d.UserID, &d.IsTerminale, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateDossierIfAbsent inserts a dossier for the user, or fetches the
// existing one when a concurrent upload won the creation race. The unique
// constraint on user_id turns the race into a catchable conflict instead of
// a duplicate row.
func CreateDossierIfAbsent(db *sql.DB, userID string, isTerminale bool) (*models.Dossier, error) {
	d := &models.Dossier{UserID: userID, IsTerminale: isTerminale, Status: models.DossierInProgress}
	query := `INSERT INTO dossiers (user_id, is_terminale, status)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at, updated_at`

	err := db.QueryRow(query, userID, isTerminale, string(models.DossierInProgress)).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err == nil {
		return d, nil
	}

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return GetDossierByUserID(db, userID)
	}
	return nil, fmt.Errorf("failed to create dossier: %w", err)
}

func UpdateDossierStatus(db *sql.DB, dossierID string, status models.DossierStatus) error {
	query := `UPDATE dossiers SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := db.Exec(query, string(status), dossierID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SubmitDossier flips every pending document to submitted and the dossier to
// pending_review in a single transaction, so a failure between the two
// updates can never leave the dossier half-submitted.
func SubmitDossier(db *sql.DB, userID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`UPDATE documents SET status = $1 WHERE user_id = $2 AND status = $3`,
		string(models.DocumentSubmitted), userID, string(models.DocumentPending))
	if err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}

	res, err := tx.Exec(`UPDATE dossiers SET status = $1, updated_at = NOW() WHERE user_id = $2`,
		string(models.DossierPendingReview), userID)
	if err != nil {
		return fmt.Errorf("failed to update dossier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// ListDossiersByStatus returns dossiers in the given status with the owning
// student's name and email, newest first.
func ListDossiersByStatus(db *sql.DB, status models.DossierStatus) ([]*models.Dossier, map[string]*models.User, error) {
	query := `SELECT d.id, d.user_id, d.is_terminale, d.status, d.created_at, d.updated_at,
			  u.id, u.email, u.first_name, u.last_name, u.country_code
			  FROM dossiers d
			  JOIN users u ON u.id = d.user_id
			  WHERE d.status = $1 AND u.is_active = true
			  ORDER BY d.updated_at DESC`

	rows, err := db.Query(query, string(status))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var dossiers []*models.Dossier
	owners := make(map[string]*models.User)
	for rows.Next() {
		d := &models.Dossier{}
		u := &models.User{}
		err := rows.Scan(
			&d.ID, &d.UserID, &d.IsTerminale, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CountryCode,
		)
		if err != nil {
			continue
		}
		dossiers = append(dossiers, d)
		owners[d.ID] = u
	}
	return dossiers, owners, nil
}
