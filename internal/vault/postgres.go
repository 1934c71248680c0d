package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// postgresStore keeps sealed credentials in Postgres for deployments that
// share one vault across instances.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a pgx pool and ensures the credentials table.
func NewPostgresStore(ctx context.Context, databaseURL string) (SecretStore, error) {
	if databaseURL == "" {
		return nil, errors.New("vault: database URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("vault: parse database URL: %w", err)
	}
	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("vault: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vault: ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS credentials (
		user_id TEXT NOT NULL,
		portal  TEXT NOT NULL,
		secrets TEXT NOT NULL,
		PRIMARY KEY (user_id, portal)
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vault: init schema: %w", err)
	}

	slog.Info("vault postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Put(ctx context.Context, row sealedRow) error {
	secrets, err := json.Marshal(row.Secrets)
	if err != nil {
		return fmt.Errorf("vault: encode %s: %w", row.Portal, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO credentials (user_id, portal, secrets) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, portal) DO UPDATE SET secrets=EXCLUDED.secrets`,
		row.UserID, row.Portal, string(secrets))
	if err != nil {
		return fmt.Errorf("vault: upsert %s: %w", row.Portal, err)
	}
	return nil
}

func (s *postgresStore) Get(ctx context.Context, userID, portal string) (sealedRow, error) {
	var secrets string
	err := s.pool.QueryRow(ctx,
		`SELECT secrets FROM credentials WHERE user_id = $1 AND portal = $2`, userID, portal).
		Scan(&secrets)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (s *postgresStore) Delete(ctx context.Context, userID, portal string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM credentials WHERE user_id = $1 AND portal = $2`, userID, portal); err != nil {
		return fmt.Errorf("vault: delete %s: %w", portal, err)
	}
	return nil
}

func (s *postgresStore) ListPortals(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT portal FROM credentials WHERE user_id = $1 ORDER BY portal`, userID)
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

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
