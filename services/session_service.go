package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/google/uuid"
)

// Publisher доставляет события сессии подписчикам комнаты (websocket hub).
type Publisher interface {
	BroadcastToRoom(roomID string, message any)
}

type SessionView struct {
	ID         string            `json:"session_id"`
	// Seed не отдаётся клиенту: по нему можно предсказать все пары.
	Seed       uint64            `json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
	Tournament brackets.Snapshot `json:"tournament"`
}

// SessionOutcome то, что завершённая сессия передаёт в анкету.
type SessionOutcome struct {
	Results []brackets.Result `json:"results"`
	History []brackets.Match  `json:"match_history"`
}

type MatchResolvedPayload struct {
	SessionID string               `json:"session_id"`
	Match     brackets.Match       `json:"match"`
	State     brackets.EngineState `json:"state"`
}

type RoundStartedPayload struct {
	SessionID string         `json:"session_id"`
	Round     brackets.Round `json:"round"`
}

type TournamentFinalizedPayload struct {
	SessionID string            `json:"session_id"`
	Results   []brackets.Result `json:"results"`
}

type SessionService interface {
	Start(ctx context.Context) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	ActiveMatch(ctx context.Context, id string) (*brackets.Match, error)
	Resolve(ctx context.Context, id string, matchID int, winner brackets.Candidate) (*SessionView, error)
	Finalize(ctx context.Context, id string) ([]brackets.Result, error)
	Results(ctx context.Context, id string) ([]brackets.Result, error)
	History(ctx context.Context, id string) ([]brackets.Match, error)
	Outcome(ctx context.Context, id string) (*SessionOutcome, error)
	Claim(ctx context.Context, id string) (*SessionOutcome, error)
	Release(ctx context.Context, id string)
	Discard(ctx context.Context, id string) error
	Watch(ctx context.Context, id string, fn func(view *SessionView)) error
	PurgeExpired(ctx context.Context, now time.Time) int
}

type session struct {
	mu         sync.Mutex
	id         string
	seed       uint64
	createdAt  time.Time
	lastSeen   time.Time
	tournament *brackets.Tournament
	results    []brackets.Result
	// claimed выставляется на время сохранения анкеты.
	claimed bool
}

type sessionService struct {
	size      int
	ttl       time.Duration
	publisher Publisher
	logger    *slog.Logger

	now     func() time.Time
	newSeed func() uint64

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionService(size int, ttl time.Duration, publisher Publisher, logger *slog.Logger) SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{
		size:      size,
		ttl:       ttl,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newSeed:   rand.Uint64,
		sessions:  make(map[string]*session),
	}
}

func (s *sessionService) Start(ctx context.Context) (*SessionView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]brackets.Candidate, s.size)
	for i := range candidates {
		candidates[i] = brackets.Candidate(i + 1)
	}

	seed := s.newSeed()
	t, err := brackets.NewTournament(candidates, brackets.WithSeed(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to start tournament: %w", err)
	}

	now := s.now().UTC()
	sess := &session{
		id:         uuid.NewString(),
		seed:       seed,
		createdAt:  now,
		lastSeen:   now,
		tournament: t,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("survey session started",
		slog.String("session_id", sess.id),
		slog.Int("candidates", s.size),
		slog.Uint64("seed", seed))

	return sess.view(), nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *sessionService) ActiveMatch(ctx context.Context, id string) (*brackets.Match, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	m, err := sess.tournament.ActiveMatch()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return &m, nil
}

func (s *sessionService) Resolve(ctx context.Context, id string, matchID int, winner brackets.Candidate) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	roundsBefore := len(sess.tournament.Rounds())
	if err := sess.tournament.ResolveMatch(matchID, winner); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	sess.lastSeen = s.now().UTC()
	view := sess.view()
	rounds := sess.tournament.Rounds()

	// Публикация под блокировкой сессии упорядочивает события относительно Watch.
	if resolved, ok := findMatch(rounds, matchID); ok {
		s.publish(id, brackets.EventMatchResolved, MatchResolvedPayload{
			SessionID: id,
			Match:     resolved,
			State:     view.Tournament.State,
		})
	}
	for _, r := range rounds[roundsBefore:] {
		s.publish(id, brackets.EventRoundStarted, RoundStartedPayload{SessionID: id, Round: r})
	}

	return view, nil
}

// Watch вызывает fn с текущим состоянием сессии под её блокировкой. Событие,
// опубликованное после снимка, не может обогнать то, что fn отправит клиенту.
func (s *sessionService) Watch(ctx context.Context, id string, fn func(view *SessionView)) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.view())
	return nil
}

func findMatch(rounds []brackets.Round, matchID int) (brackets.Match, bool) {
	for _, r := range rounds {
		for _, m := range r.Matches {
			if m.ID == matchID {
				return m, true
			}
		}
	}
	return brackets.Match{}, false
}

// Finalize подводит итоги сессии. Повторные вызовы возвращают сохранённые итоги.
func (s *sessionService) Finalize(ctx context.Context, id string) ([]brackets.Result, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.finalizeLocked(sess); err != nil {
		return nil, err
	}
	return slices.Clone(sess.results), nil
}

// finalizeLocked вызывается под sess.mu.
func (s *sessionService) finalizeLocked(sess *session) error {
	if sess.results != nil {
		return nil
	}
	results, err := sess.tournament.Finalize()
	if err != nil {
		return fmt.Errorf("session %s: %w", sess.id, err)
	}
	sess.results = results
	sess.lastSeen = s.now().UTC()

	s.logger.Info("tournament finalized",
		slog.String("session_id", sess.id),
		slog.Int("champion", int(results[0].Candidate)))
	s.publish(sess.id, brackets.EventTournamentFinalized, TournamentFinalizedPayload{
		SessionID: sess.id,
		Results:   slices.Clone(results),
	})
	return nil
}

func (s *sessionService) Results(ctx context.Context, id string) ([]brackets.Result, error) {
	out, err := s.Outcome(ctx, id)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (s *sessionService) History(ctx context.Context, id string) ([]brackets.Match, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	history := sess.tournament.Matches()
	if history == nil {
		history = []brackets.Match{}
	}
	return history, nil
}

// Outcome возвращает итоги и историю завершённой сессии. Если матчи сыграны,
// а Finalize ещё не вызывали, итоги подводятся здесь.
func (s *sessionService) Outcome(ctx context.Context, id string) (*SessionOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.outcomeLocked(sess)
}

// outcomeLocked вызывается под sess.mu.
func (s *sessionService) outcomeLocked(sess *session) (*SessionOutcome, error) {
	if !sess.tournament.IsDone() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSurveyNotFinished, sess.id, sess.tournament.State())
	}
	if err := s.finalizeLocked(sess); err != nil {
		return nil, err
	}
	return &SessionOutcome{
		Results: slices.Clone(sess.results),
		History: sess.tournament.Matches(),
	}, nil
}

// Claim берёт завершённую сессию под отправку анкеты. Пока сессия захвачена,
// повторный Claim возвращает ErrSubmissionInProgress.
func (s *sessionService) Claim(ctx context.Context, id string) (*SessionOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.claimed {
		return nil, fmt.Errorf("%w: session %s", ErrSubmissionInProgress, id)
	}
	out, err := s.outcomeLocked(sess)
	if err != nil {
		return nil, err
	}
	sess.claimed = true
	return out, nil
}

// Release снимает захват после неудачной отправки, чтобы её можно было повторить.
func (s *sessionService) Release(ctx context.Context, id string) {
	sess, err := s.lookup(id)
	if err != nil {
		return
	}
	sess.mu.Lock()
	sess.claimed = false
	sess.mu.Unlock()
}

func (s *sessionService) Discard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// PurgeExpired удаляет сессии, простаивающие дольше TTL, и возвращает их число.
func (s *sessionService) PurgeExpired(ctx context.Context, now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := now.Sub(sess.lastSeen) > s.ttl
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			purged++
		}
	}
	if purged > 0 {
		s.logger.Info("expired survey sessions purged",
			slog.Int("purged", purged),
			slog.Int("remaining", len(s.sessions)))
	}
	return purged
}

func (s *sessionService) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *sessionService) publish(sessionID string, eventType brackets.EventType, payload any) {
	if s.publisher == nil {
		return
	}
	room := brackets.SessionRoom(sessionID)
	s.publisher.BroadcastToRoom(room, brackets.Event{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}

// view вызывается под sess.mu.
func (sess *session) view() *SessionView {
	return &SessionView{
		ID:         sess.id,
		Seed:       sess.seed,
		CreatedAt:  sess.createdAt,
		Tournament: sess.tournament.Snapshot(),
	}
}
