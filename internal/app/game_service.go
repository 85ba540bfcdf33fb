package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"curare-challenge/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// ChallengeRepository loads challenges (from cache/backing store).
type ChallengeRepository interface {
	GetChallenge(ctx context.Context, challengeID string) (*domain.Challenge, error)
}

// ResultRecorder archives finished playthroughs. Recording the same session
// twice overwrites the earlier entry.
type ResultRecorder interface {
	RecordResults(ctx context.Context, results domain.Results) error
}

// ResultArchive looks up archived playthroughs. Recorders that implement it
// answer results queries for sessions no longer in the session store.
type ResultArchive interface {
	GetResults(ctx context.Context, sessionID string) (domain.Results, error)
}

// GameService contains the challenge use cases.
type GameService struct {
	sessions   SessionRepository
	challenges ChallengeRepository
	recorder   ResultRecorder
	now        func() time.Time
	newID      func() string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameService(store SessionRepository, challenges ChallengeRepository, recorder ResultRecorder) *GameService {
	return NewGameServiceWithClock(store, challenges, recorder, time.Now)
}

// NewGameServiceWithClock allows deterministic timestamps in tests.
func NewGameServiceWithClock(store SessionRepository, challenges ChallengeRepository, recorder ResultRecorder, now func() time.Time) *GameService {
	return &GameService{
		sessions:   store,
		challenges: challenges,
		recorder:   recorder,
		now:        now,
		newID:      uuid.NewString,
		rnd:        rand.New(rand.NewSource(now().UnixNano())),
	}
}

// Start creates and stores a fresh session.
func (s *GameService) Start(ctx context.Context, challengeID string) (domain.Session, error) {
	ch, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return domain.Session{}, err
	}
	s.mu.Lock()
	session := NewSession(ch, s.newID(), s.rnd)
	s.mu.Unlock()
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Advance applies act to a stored session. Unknown sessions are synthesized
// under the given id before the action is applied.
func (s *GameService) Advance(ctx context.Context, sessionID, challengeID string, act domain.Action) (domain.Session, error) {
	var prev *domain.Session
	stored, err := s.sessions.Load(ctx, sessionID)
	switch {
	case err == nil:
		prev = &stored
		challengeID = stored.ChallengeID
	case errors.Is(err, domain.ErrSessionNotFound):
	default:
		return domain.Session{}, err
	}

	ch, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return domain.Session{}, err
	}
	if sessionID == "" {
		sessionID = s.newID()
	}

	next := s.drive(ch, prev, sessionID, act)
	if err := s.sessions.Save(ctx, next); err != nil {
		return domain.Session{}, err
	}
	s.recordIfFinished(ctx, ch, prev, next)
	return next, nil
}

// AdvanceState drives a session the client keeps itself. Malformed or empty
// state starts a fresh session.
func (s *GameService) AdvanceState(ctx context.Context, challengeID string, state []byte, act domain.Action) (domain.Session, error) {
	var prev *domain.Session
	if len(state) > 0 {
		var decoded domain.Session
		if err := json.Unmarshal(state, &decoded); err == nil {
			prev = &decoded
			if decoded.ChallengeID != "" {
				challengeID = decoded.ChallengeID
			}
		}
	}

	ch, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return domain.Session{}, err
	}
	id := s.newID()
	if prev != nil && prev.ID != "" {
		id = prev.ID
	}
	next := s.drive(ch, prev, id, act)
	s.recordIfFinished(ctx, ch, prev, next)
	return next, nil
}

// View returns the renderable step of a stored session.
func (s *GameService) View(ctx context.Context, session domain.Session) (domain.StepView, error) {
	ch, err := s.challenges.GetChallenge(ctx, session.ChallengeID)
	if err != nil {
		return domain.StepView{}, err
	}
	return View(ch, session), nil
}

// Results builds the comparison series for a stored session, falling back
// to the archive for sessions that were never stored or have expired.
func (s *GameService) Results(ctx context.Context, sessionID string) (domain.Results, error) {
	session, err := s.sessions.Load(ctx, sessionID)
	if err == nil {
		return s.ResultsFor(ctx, session)
	}
	if archive, ok := s.recorder.(ResultArchive); ok && errors.Is(err, domain.ErrSessionNotFound) {
		return archive.GetResults(ctx, sessionID)
	}
	return domain.Results{}, err
}

// ResultsFor builds the comparison series for any session.
func (s *GameService) ResultsFor(ctx context.Context, session domain.Session) (domain.Results, error) {
	ch, err := s.challenges.GetChallenge(ctx, session.ChallengeID)
	if err != nil {
		return domain.Results{}, err
	}
	return BuildResults(ch, session), nil
}

func (s *GameService) drive(ch *domain.Challenge, prev *domain.Session, id string, act domain.Action) domain.Session {
	if act.Timestamp == 0 && (act.Advance || act.End) {
		act.Timestamp = s.now().UnixMilli()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Advance(ch, prev, id, act, s.rnd)
}

// recordIfFinished archives results the first time a session reaches the
// results step. Archive failures do not fail the action.
func (s *GameService) recordIfFinished(ctx context.Context, ch *domain.Challenge, prev *domain.Session, next domain.Session) {
	if s.recorder == nil || next.Step != ch.LastStep() {
		return
	}
	if prev != nil && prev.Step == ch.LastStep() {
		return
	}
	if err := s.recorder.RecordResults(ctx, BuildResults(ch, next)); err != nil {
		log.Printf("record results for session %s: %v", next.ID, err)
	}
}
