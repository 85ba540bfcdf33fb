package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"curare-challenge/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ChallengeLoader fetches challenge definitions from a backing store.
type ChallengeLoader interface {
	LoadChallenge(ctx context.Context, challengeID string) (domain.Definition, error)
}

// localTTL bounds how long a built challenge is reused before Redis is
// consulted again.
const localTTL = 30 * time.Second

// ChallengeRepository caches challenge definitions in Redis as JSON and falls
// back to the loader on a miss:
//
//	SET challenge:{challengeID} {definition json} EX ttl
//
// Built challenges are also kept in process for a short while so the step
// table is not rebuilt on every request.
type ChallengeRepository struct {
	client *redis.Client
	loader ChallengeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	local map[string]localChallenge
}

type localChallenge struct {
	challenge *domain.Challenge
	expiresAt time.Time
}

func NewChallengeRepository(client *redis.Client, loader ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return &ChallengeRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		local:  make(map[string]localChallenge),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error) {
	if ch, ok := r.fromLocal(challengeID); ok {
		return ch, nil
	}

	result, err, _ := r.sf.Do(challengeID, func() (interface{}, error) {
		if ch, ok := r.fromLocal(challengeID); ok {
			return ch, nil
		}

		def, ok := r.fromCache(ctx, challengeID)
		if !ok {
			loaded, err := r.loader.LoadChallenge(ctx, challengeID)
			if err != nil {
				return nil, err
			}
			def = loaded

			raw, err := json.Marshal(def)
			if err != nil {
				return nil, err
			}
			if err := r.client.Set(ctx, r.key(challengeID), raw, r.ttlWithJitter()).Err(); err != nil {
				log.Printf("cache challenge %s: %v", challengeID, err)
			}
		}

		ch, err := domain.NewChallenge(def)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.local[challengeID] = localChallenge{challenge: ch, expiresAt: r.clock().Add(r.localTTL())}
		r.mu.Unlock()
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Challenge), nil
}

func (r *ChallengeRepository) fromLocal(challengeID string) (*domain.Challenge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.local[challengeID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.challenge, true
}

func (r *ChallengeRepository) localTTL() time.Duration {
	if r.ttl > 0 && r.ttl < localTTL {
		return r.ttl
	}
	return localTTL
}

func (r *ChallengeRepository) fromCache(ctx context.Context, challengeID string) (domain.Definition, bool) {
	raw, err := r.client.Get(ctx, r.key(challengeID)).Bytes()
	if err != nil {
		return domain.Definition{}, false
	}
	var def domain.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return domain.Definition{}, false
	}
	return def, true
}

func (r *ChallengeRepository) key(challengeID string) string {
	return "challenge:" + challengeID
}

func (r *ChallengeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
