package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"curare-challenge/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ChallengeLoader fetches challenge definitions from a backing store.
type ChallengeLoader interface {
	LoadChallenge(ctx context.Context, challengeID string) (domain.Definition, error)
}

// ChallengeRepository caches built challenges with TTL to avoid repeated DB hits.
type ChallengeRepository struct {
	loader ChallengeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedChallenge
}

type cachedChallenge struct {
	challenge *domain.Challenge
	expiresAt time.Time
}

func NewChallengeRepository(loader ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return &ChallengeRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedChallenge),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error) {
	if ch, ok := r.cached(challengeID); ok {
		return ch, nil
	}

	result, err, _ := r.sf.Do(challengeID, func() (interface{}, error) {
		if ch, ok := r.cached(challengeID); ok {
			return ch, nil
		}

		def, err := r.loader.LoadChallenge(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		ch, err := domain.NewChallenge(def)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[challengeID] = cachedChallenge{
			challenge: ch,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Challenge), nil
}

func (r *ChallengeRepository) cached(challengeID string) (*domain.Challenge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[challengeID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.challenge, true
}

func (r *ChallengeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticChallengeLoader is a loader backed by an in-memory map (built-in challenge, tests).
type StaticChallengeLoader struct {
	defs map[string]domain.Definition
}

func NewStaticChallengeLoader(defs ...domain.Definition) *StaticChallengeLoader {
	m := make(map[string]domain.Definition, len(defs))
	for _, def := range defs {
		m[def.ID] = def
	}
	return &StaticChallengeLoader{defs: m}
}

func (l *StaticChallengeLoader) LoadChallenge(_ context.Context, challengeID string) (domain.Definition, error) {
	if def, ok := l.defs[challengeID]; ok {
		return def, nil
	}
	return domain.Definition{}, domain.ErrChallengeNotFound
}
