package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"curare-challenge/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore archives finished playthroughs, one row per session.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) RecordResults(ctx context.Context, results domain.Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO results (session_id, challenge_id, data, recorded_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (session_id) DO UPDATE
		SET challenge_id = EXCLUDED.challenge_id, data = EXCLUDED.data, recorded_at = EXCLUDED.recorded_at`,
		results.SessionID, results.ChallengeID, string(data))
	if err != nil {
		return fmt.Errorf("record results: %w", err)
	}
	return nil
}

// GetResults returns the archived results of a session.
func (s *ResultStore) GetResults(ctx context.Context, sessionID string) (domain.Results, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM results WHERE session_id=$1`, sessionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Results{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Results{}, fmt.Errorf("load results: %w", err)
	}
	var results domain.Results
	if err := json.Unmarshal(raw, &results); err != nil {
		return domain.Results{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return results, nil
}
