package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"curare-challenge/internal/catalog"
	"curare-challenge/internal/domain"
)

func TestChallengeRepositoryCaches(t *testing.T) {
	loader := &countingLoader{ChallengeLoader: NewStaticChallengeLoader(catalog.Definition())}
	repo := NewChallengeRepository(loader, time.Minute)

	first, err := repo.GetChallenge(context.Background(), catalog.ChallengeID)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if first.StepCount() != 15 {
		t.Fatalf("expected 15 steps, got %d", first.StepCount())
	}

	second, err := repo.GetChallenge(context.Background(), catalog.ChallengeID)
	if err != nil {
		t.Fatalf("get challenge 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if first != second {
		t.Fatalf("expected the cached challenge to be shared")
	}
}

func TestChallengeRepositoryExpires(t *testing.T) {
	loader := &countingLoader{ChallengeLoader: NewStaticChallengeLoader(catalog.Definition())}
	repo := NewChallengeRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetChallenge(context.Background(), catalog.ChallengeID); err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetChallenge(context.Background(), catalog.ChallengeID); err != nil {
		t.Fatalf("get challenge after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestChallengeRepositoryErrors(t *testing.T) {
	broken := catalog.Definition()
	broken.ID = "broken"
	broken.Files = broken.Files[:2]
	repo := NewChallengeRepository(NewStaticChallengeLoader(broken), time.Minute)

	if _, err := repo.GetChallenge(context.Background(), "missing"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetChallenge(context.Background(), "broken"); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected invalid challenge, got %v", err)
	}
}

type countingLoader struct {
	ChallengeLoader
	calls int
}

func (l *countingLoader) LoadChallenge(ctx context.Context, challengeID string) (domain.Definition, error) {
	l.calls++
	return l.ChallengeLoader.LoadChallenge(ctx, challengeID)
}
