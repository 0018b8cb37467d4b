package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	steps := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"users", createUsersTable},
		{"roles", createRolesTables},
		{"dossiers", createDossiersTable},
		{"documents", createDocumentsTable},
		{"payments", createPaymentsTable},
		{"settings", createSettingsTable},
		{"seed roles", seedRoles},
	}

	for _, step := range steps {
		if err := step.fn(db); err != nil {
			log.Printf("Migration step %q failed: %v", step.name, err)
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			phone VARCHAR(20),
			country_code VARCHAR(2) NOT NULL DEFAULT '',
			payment_status VARCHAR(10) NOT NULL DEFAULT 'none',
			split_payment_enabled BOOLEAN NOT NULL DEFAULT false,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := db.Exec(query)
	return err
}

func createRolesTables(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		);
	`
	_, err := db.Exec(query)
	return err
}

func createDossiersTable(db *sql.DB) error {
	// The unique constraint on user_id is the enforcement point for
	// "at most one dossier per user": concurrent first uploads both trying
	// to create a dossier collide here and one falls back to fetch-existing.
	query := `
		CREATE TABLE IF NOT EXISTS dossiers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			is_terminale BOOLEAN NOT NULL DEFAULT false,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := db.Exec(query)
	return err
}

func createDocumentsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			dossier_id UUID NOT NULL REFERENCES dossiers(id) ON DELETE CASCADE,
			type VARCHAR(30) NOT NULL,
			sub_type VARCHAR(50) NOT NULL DEFAULT '',
			storage_path TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id);
	`
	_, err := db.Exec(query)
	return err
}

func createPaymentsTable(db *sql.DB) error {
	// id is the provider transaction id, not a generated uuid. The same
	// provider callback redelivered can therefore never create a second row.
	query := `
		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			method VARCHAR(20) NOT NULL,
			provider VARCHAR(20) NOT NULL DEFAULT '',
			receipt_path TEXT,
			validated_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id);
		CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
	`
	_, err := db.Exec(query)
	return err
}

func createSettingsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := db.Exec(query)
	return err
}

func seedRoles(db *sql.DB) error {
	query := `
		INSERT INTO roles (name) VALUES ('student'), ('admin')
		ON CONFLICT (name) DO NOTHING;
	`
	_, err := db.Exec(query)
	return err
}
