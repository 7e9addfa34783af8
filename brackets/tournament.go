package brackets

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// BracketKind сетка, к которой относится раунд.
type BracketKind int

const (
	// Основная сетка на выбывание до чемпиона.
	Primary BracketKind = iota + 1
	// Утешительный раунд среди проигравших в первом раунде.
	Consolation
)

func (k BracketKind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Consolation:
		return "consolation"
	default:
		return fmt.Sprintf("BracketKind(%d)", int(k))
	}
}

func (k BracketKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BracketKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "primary":
		*k = Primary
	case "consolation":
		*k = Consolation
	default:
		return fmt.Errorf("unknown bracket kind %q", text)
	}
	return nil
}

// EngineState состояние конечного автомата турнира.
type EngineState int

const (
	AwaitingMatch EngineState = iota + 1
	RoundComplete
	Finalizing
	Done
)

func (s EngineState) String() string {
	switch s {
	case AwaitingMatch:
		return "awaiting_match"
	case RoundComplete:
		return "round_complete"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

func (s EngineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *EngineState) UnmarshalText(text []byte) error {
	for _, st := range []EngineState{AwaitingMatch, RoundComplete, Finalizing, Done} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown engine state %q", text)
}

// Round набор матчей одного раунда. Порядок матчей совпадает с порядком показа.
type Round struct {
	Number  int         `json:"round_number"`
	Bracket BracketKind `json:"bracket"`
	Matches []Match     `json:"matches"`
}

func (r Round) clone() Round {
	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = m.clone()
	}
	r.Matches = matches
	return r
}

// Tournament ведёт турнир предпочтений одного участника: раунды основной
// сетки до чемпиона, затем не более одного утешительного раунда среди
// проигравших в первом раунде.
//
// Tournament не потокобезопасен, у каждой сессии свой экземпляр.
type Tournament struct {
	generator PairingGenerator

	candidates       []Candidate
	alive            []Candidate
	eliminated       []Candidate
	firstRoundLosers []Candidate

	rounds     []Round
	current    int
	matchIndex int
	bracket    BracketKind
	state      EngineState

	results []Result
}

type Option func(*Tournament)

// WithGenerator подменяет Pairer по умолчанию.
func WithGenerator(g PairingGenerator) Option {
	return func(t *Tournament) {
		t.generator = g
	}
}

func WithRand(rng *rand.Rand) Option {
	return WithGenerator(NewPairer(rng))
}

// WithSeed делает пары воспроизводимыми: одинаковый seed и одинаковые выборы
// дают одинаковые раунды и результаты.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewTournament проверяет кандидатов и формирует первый раунд основной сетки.
func NewTournament(candidates []Candidate, opts ...Option) (*Tournament, error) {
	if len(candidates) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 candidates, got %d", ErrInvalidInput, len(candidates))
	}
	seen := make(map[Candidate]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate candidate %d", ErrInvalidInput, c)
		}
		seen[c] = struct{}{}
	}

	t := &Tournament{
		candidates: slices.Clone(candidates),
		alive:      slices.Clone(candidates),
		bracket:    Primary,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.generator == nil {
		t.generator = NewPairer(nil)
	}

	if err := t.startRound(Primary, t.alive); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tournament) State() EngineState {
	return t.state
}

func (t *Tournament) Bracket() BracketKind {
	return t.bracket
}

// IsDone сообщает, что матчей больше не будет. Finalize при этом ещё может
// быть не вызван.
func (t *Tournament) IsDone() bool {
	return t.state == Finalizing || t.state == Done
}

// ActiveMatch возвращает матч, ожидающий выбора.
func (t *Tournament) ActiveMatch() (Match, error) {
	m, err := t.activeMatch()
	if err != nil {
		return Match{}, err
	}
	return m.clone(), nil
}

func (t *Tournament) activeMatch() (*Match, error) {
	if t.state != AwaitingMatch {
		return nil, fmt.Errorf("%w: state is %s", ErrNoActiveMatch, t.state)
	}
	return &t.rounds[t.current].Matches[t.matchIndex], nil
}

// ResolveMatch записывает победителя активного матча и продвигает турнир
// дальше. Отклонённый вызов состояние не меняет.
func (t *Tournament) ResolveMatch(matchID int, winner Candidate) error {
	active, err := t.activeMatch()
	if err != nil {
		return err
	}
	if active.ID != matchID {
		return fmt.Errorf("%w: match %d, active match is %d", ErrUnknownMatch, matchID, active.ID)
	}
	if winner != active.Left && winner != active.Right {
		return fmt.Errorf("%w: candidate %d in match %d (%d vs %d)",
			ErrInvalidSelection, winner, matchID, active.Left, active.Right)
	}

	w := winner
	active.Winner = &w
	t.matchIndex++
	return t.seekUnresolved()
}

// seekUnresolved переводит matchIndex на следующий неразрешённый матч раунда,
// пропуская bye. Законченный раунд сразу продвигается.
func (t *Tournament) seekUnresolved() error {
	matches := t.rounds[t.current].Matches
	for t.matchIndex < len(matches) && matches[t.matchIndex].Resolved() {
		t.matchIndex++
	}
	if t.matchIndex < len(matches) {
		t.state = AwaitingMatch
		return nil
	}
	t.state = RoundComplete
	return t.advanceRound()
}

func (t *Tournament) startRound(kind BracketKind, entrants []Candidate) error {
	matches, err := t.generator.Pair(entrants)
	if err != nil {
		return fmt.Errorf("pairing %s round %d: %w", kind, len(t.rounds)+1, err)
	}
	t.rounds = append(t.rounds, Round{
		Number:  len(t.rounds) + 1,
		Bracket: kind,
		Matches: matches,
	})
	t.current = len(t.rounds) - 1
	t.bracket = kind
	t.matchIndex = 0
	return t.seekUnresolved()
}

func (t *Tournament) advanceRound() error {
	if t.state != RoundComplete {
		return fmt.Errorf("advance round: state is %s", t.state)
	}

	// Утешительная сетка состоит из одного раунда.
	if t.bracket == Consolation {
		t.state = Finalizing
		return nil
	}

	winners, losers := partitionRound(t.rounds[t.current].Matches)
	t.alive = winners
	t.eliminated = append(t.eliminated, losers...)
	if t.current == 0 {
		t.firstRoundLosers = slices.Clone(losers)
	}

	if len(winners) > 1 {
		return t.startRound(Primary, winners)
	}
	if len(t.firstRoundLosers) > 1 {
		return t.startRound(Consolation, t.firstRoundLosers)
	}
	t.state = Finalizing
	return nil
}

func partitionRound(matches []Match) (winners, losers []Candidate) {
	seen := make(map[Candidate]struct{}, len(matches))
	for _, m := range matches {
		if m.Winner == nil {
			continue
		}
		if _, ok := seen[*m.Winner]; !ok {
			seen[*m.Winner] = struct{}{}
			winners = append(winners, *m.Winner)
		}
		if loser, ok := m.Loser(); ok {
			losers = append(losers, loser)
		}
	}
	return winners, losers
}

// Finalize считает итоговый рейтинг. Допустим ровно один раз, после
// последнего матча.
func (t *Tournament) Finalize() ([]Result, error) {
	switch t.state {
	case Finalizing:
	case Done:
		return nil, ErrAlreadyFinalized
	default:
		return nil, fmt.Errorf("%w: state is %s", ErrNotFinalizing, t.state)
	}

	t.results = computeResults(t.candidates, t.Matches())
	t.state = Done
	return slices.Clone(t.results), nil
}

// Results возвращает итоги после Finalize.
func (t *Tournament) Results() ([]Result, bool) {
	if t.state != Done {
		return nil, false
	}
	return slices.Clone(t.results), true
}

// Candidates возвращает исходных кандидатов в исходном порядке.
func (t *Tournament) Candidates() []Candidate {
	return slices.Clone(t.candidates)
}

// Alive возвращает кандидатов, оставшихся в основной сетке.
func (t *Tournament) Alive() []Candidate {
	return slices.Clone(t.alive)
}

func (t *Tournament) Eliminated() []Candidate {
	return slices.Clone(t.eliminated)
}

func (t *Tournament) FirstRoundLosers() []Candidate {
	return slices.Clone(t.firstRoundLosers)
}

// Champion возвращает победителя основной сетки, когда он известен.
func (t *Tournament) Champion() (Candidate, bool) {
	if len(t.alive) != 1 {
		return 0, false
	}
	return t.alive[0], true
}

func (t *Tournament) CurrentRound() Round {
	return t.rounds[t.current].clone()
}

func (t *Tournament) Rounds() []Round {
	rounds := make([]Round, len(t.rounds))
	for i, r := range t.rounds {
		rounds[i] = r.clone()
	}
	return rounds
}

// Matches возвращает историю матчей всех раундов одним списком.
func (t *Tournament) Matches() []Match {
	var history []Match
	for _, r := range t.rounds {
		for _, m := range r.Matches {
			history = append(history, m.clone())
		}
	}
	return history
}

// Snapshot сериализуемое представление турнира только для чтения.
type Snapshot struct {
	State            EngineState `json:"state"`
	Bracket          BracketKind `json:"bracket"`
	RoundNumber      int         `json:"round_number"`
	MatchIndex       int         `json:"match_index"`
	MatchesInRound   int         `json:"matches_in_round"`
	ActiveMatch      *Match      `json:"active_match,omitempty"`
	Alive            []Candidate `json:"alive"`
	Eliminated       []Candidate `json:"eliminated"`
	FirstRoundLosers []Candidate `json:"first_round_losers"`
	Champion         *Candidate  `json:"champion,omitempty"`
	Rounds           []Round     `json:"rounds"`
}

func (t *Tournament) Snapshot() Snapshot {
	round := t.rounds[t.current]
	s := Snapshot{
		State:            t.state,
		Bracket:          t.bracket,
		RoundNumber:      round.Number,
		MatchIndex:       t.matchIndex,
		MatchesInRound:   len(round.Matches),
		Alive:            t.Alive(),
		Eliminated:       t.Eliminated(),
		FirstRoundLosers: t.FirstRoundLosers(),
		Rounds:           t.Rounds(),
	}
	if m, err := t.ActiveMatch(); err == nil {
		s.ActiveMatch = &m
	}
	if c, ok := t.Champion(); ok {
		s.Champion = &c
	}
	return s
}
