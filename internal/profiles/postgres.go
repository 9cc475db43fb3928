package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	name       TEXT PRIMARY KEY,
	config     JSONB NOT NULL,
	menu       JSONB NOT NULL,
	summary    JSONB NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_state (
	key   TEXT PRIMARY KEY,
	value JSONB NOT NULL
);
`

const (
	stateKeyLast   = "last_profile"
	stateKeyLatest = "latest_state"
)

// PostgresStore persists profiles in Postgres. It owns its pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to the database, applies the schema and
// returns a ready store.
func NewPostgresStore(ctx context.Context, connString string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying profile schema: %w", err)
	}
	return &PostgresStore{
		pool:   pool,
		logger: log.With().Str("component", "profile-store").Str("backend", "postgres").Logger(),
	}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]ListEntry, string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, updated_at, summary FROM profiles ORDER BY name`)
	if err != nil {
		return nil, "", fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	entries := []ListEntry{}
	for rows.Next() {
		var e ListEntry
		var summary []byte
		if err := rows.Scan(&e.Name, &e.UpdatedAt, &summary); err != nil {
			return nil, "", fmt.Errorf("scanning profile row: %w", err)
		}
		if err := json.Unmarshal(summary, &e.Summary); err != nil {
			return nil, "", fmt.Errorf("decoding profile summary: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("listing profiles: %w", err)
	}

	last, err := s.stateValue(ctx, stateKeyLast)
	if err != nil {
		return nil, "", err
	}
	var lastName string
	if last != nil {
		if err := json.Unmarshal(last, &lastName); err != nil {
			lastName = ""
		}
	}
	return entries, lastName, nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*Profile, error) {
	var p Profile
	var menu, summary []byte
	err := s.pool.QueryRow(ctx, `
		SELECT name, config, menu, summary, updated_at
		FROM profiles WHERE name = $1`, name).
		Scan(&p.Name, &p.Config, &menu, &summary, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if err := json.Unmarshal(menu, &p.Menu); err != nil {
		return nil, fmt.Errorf("decoding profile menu: %w", err)
	}
	if err := json.Unmarshal(summary, &p.Summary); err != nil {
		return nil, fmt.Errorf("decoding profile summary: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, config json.RawMessage, menu []MenuItem, overwrite bool) (*Profile, error) {
	if menu == nil {
		menu = []MenuItem{}
	}
	p := &Profile{
		Name:      name,
		Config:    config,
		Menu:      menu,
		Summary:   summarize(menu),
		UpdatedAt: now(),
	}
	menuJSON, err := json.Marshal(p.Menu)
	if err != nil {
		return nil, fmt.Errorf("encoding profile menu: %w", err)
	}
	summaryJSON, err := json.Marshal(p.Summary)
	if err != nil {
		return nil, fmt.Errorf("encoding profile summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if !overwrite {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM profiles WHERE name = $1)`, name).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("checking profile existence: %w", err)
		}
		if exists {
			return nil, ErrExists
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (name, config, menu, summary, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			config = EXCLUDED.config,
			menu = EXCLUDED.menu,
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at`,
		name, []byte(config), menuJSON, summaryJSON, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	if err := setStateValueTx(ctx, tx, stateKeyLast, name); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM user_state WHERE key = $1 AND value = to_jsonb($2::text)`,
		stateKeyLast, name)
	if err != nil {
		return fmt.Errorf("clearing last profile: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) SetLast(ctx context.Context, name string) error {
	return s.setStateValue(ctx, stateKeyLast, name)
}

func (s *PostgresStore) LatestState(ctx context.Context) (*State, error) {
	raw, err := s.stateValue(ctx, stateKeyLatest)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &State{Menu: []MenuItem{}}, nil
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decoding latest state: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) SaveLatestState(ctx context.Context, config json.RawMessage, menu []MenuItem) error {
	if menu == nil {
		menu = []MenuItem{}
	}
	return s.setStateValue(ctx, stateKeyLatest, &State{
		Config:    config,
		Menu:      menu,
		UpdatedAt: now(),
	})
}

func (s *PostgresStore) Export(ctx context.Context) (json.RawMessage, error) {
	entries, last, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	doc := struct {
		Profiles    map[string]*Profile `json:"profiles"`
		LastProfile string              `json:"last_profile,omitempty"`
		LatestState *State              `json:"latest_state,omitempty"`
	}{Profiles: map[string]*Profile{}}
	for _, e := range entries {
		p, err := s.Get(ctx, e.Name)
		if err != nil {
			return nil, err
		}
		doc.Profiles[e.Name] = p
	}
	doc.LastProfile = last
	if st, err := s.LatestState(ctx); err == nil && st.Config != nil {
		doc.LatestState = st
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding user data: %w", err)
	}
	return raw, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) stateValue(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM user_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) setStateValue(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding state %q: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, raw)
	if err != nil {
		return fmt.Errorf("saving state %q: %w", key, err)
	}
	return nil
}

func setStateValueTx(ctx context.Context, tx pgx.Tx, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding state %q: %w", key, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, raw)
	if err != nil {
		return fmt.Errorf("saving state %q: %w", key, err)
	}
	return nil
}
