package database

import (
	"database/sql"
	"encoding/json"
)

// UpsertSetting stores a JSON value under the given key, replacing any
// previous value.
func UpsertSetting(db *sql.DB, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	query := `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err = db.Exec(query, key, data)
	return err
}

// GetSetting unmarshals the stored value for key into out. Returns
// sql.ErrNoRows when the key has never been written.
func GetSetting(db *sql.DB, key string, out interface{}) error {
	var data []byte
	err := db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
