package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"curare-challenge/internal/domain"
	"github.com/uptrace/bun"
)

type challengeRow struct {
	bun.BaseModel `bun:"table:challenges"`

	ID   string          `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

// SeedChallenge inserts or replaces a challenge definition.
func SeedChallenge(ctx context.Context, db bun.IDB, def domain.Definition) error {
	row, err := newChallengeRow(def)
	if err != nil {
		return err
	}
	_, err = db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("seed challenge %s: %w", def.ID, err)
	}
	return nil
}

// EnsureChallenge inserts def unless a challenge with the same id exists.
// It reports whether a row was written.
func EnsureChallenge(ctx context.Context, db bun.IDB, def domain.Definition) (bool, error) {
	row, err := newChallengeRow(def)
	if err != nil {
		return false, err
	}
	res, err := db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("ensure challenge %s: %w", def.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func newChallengeRow(def domain.Definition) (*challengeRow, error) {
	if _, err := domain.NewChallenge(def); err != nil {
		return nil, err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal challenge: %w", err)
	}
	return &challengeRow{ID: def.ID, Data: data}, nil
}
