package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// sqliteStore keeps sealed credentials in a local SQLite file.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the credential database at path,
// creating parent directories as needed.
func NewSQLiteStore(path string) (SecretStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("vault: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vault: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		user_id TEXT NOT NULL,
		portal  TEXT NOT NULL,
		secrets TEXT NOT NULL,
		PRIMARY KEY (user_id, portal)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("vault: init schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Put(ctx context.Context, row sealedRow) error {
	secrets, err := json.Marshal(row.Secrets)
	if err != nil {
		return fmt.Errorf("vault: encode %s: %w", row.Portal, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, portal, secrets) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, portal) DO UPDATE SET secrets=excluded.secrets`,
		row.UserID, row.Portal, string(secrets))
	if err != nil {
		return fmt.Errorf("vault: upsert %s: %w", row.Portal, err)
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, userID, portal string) (sealedRow, error) {
	var secrets string
	err := s.db.QueryRowContext(ctx,
		`SELECT secrets FROM credentials WHERE user_id = ? AND portal = ?`, userID, portal).
		Scan(&secrets)
	if errors.Is(err, sql.ErrNoRows) {
		return sealedRow{}, engine.ErrNotFound
	}
	if err != nil {
		return sealedRow{}, fmt.Errorf("vault: get %s: %w", portal, err)
	}
	row := sealedRow{UserID: userID, Portal: portal}
	if err := json.Unmarshal([]byte(secrets), &row.Secrets); err != nil {
		return sealedRow{}, fmt.Errorf("vault: decode %s: %w", portal, err)
	}
	return row, nil
}

func (s *sqliteStore) Delete(ctx context.Context, userID, portal string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE user_id = ? AND portal = ?`, userID, portal); err != nil {
		return fmt.Errorf("vault: delete %s: %w", portal, err)
	}
	return nil
}

func (s *sqliteStore) ListPortals(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT portal FROM credentials WHERE user_id = ? ORDER BY portal`, userID)
	if err != nil {
		return nil, fmt.Errorf("vault: list portals: %w", err)
	}
	defer rows.Close()

	var portals []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			slog.Warn("vault: portal row skipped", slog.Any("error", err))
			continue
		}
		portals = append(portals, p)
	}
	return portals, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }
