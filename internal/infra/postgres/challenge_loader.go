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

// ChallengeLoader loads challenge definitions stored as JSONB in Postgres.
type ChallengeLoader struct {
	pool *pgxpool.Pool
}

func NewChallengeLoader(pool *pgxpool.Pool) *ChallengeLoader {
	return &ChallengeLoader{pool: pool}
}

func (l *ChallengeLoader) LoadChallenge(ctx context.Context, challengeID string) (domain.Definition, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM challenges WHERE id=$1`, challengeID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Definition{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Definition{}, fmt.Errorf("load challenge: %w", err)
	}
	var def domain.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return domain.Definition{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return def, nil
}
