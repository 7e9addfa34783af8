package brackets

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialGenerator pairs candidates in the order given, so scenarios can
// assert exact brackets.
type sequentialGenerator struct {
	lastID int
}

func (g *sequentialGenerator) Pair(candidates []Candidate) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, ErrInvalidInput
	}
	var matches []Match
	for i := 0; i < len(candidates); i += 2 {
		g.lastID++
		m := Match{ID: g.lastID, Left: candidates[i]}
		if i+1 < len(candidates) {
			m.Right = candidates[i+1]
		} else {
			w := candidates[i]
			m.Right = w
			m.Winner = &w
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func lowerWins(m Match) Candidate {
	return min(m.Left, m.Right)
}

func alternating(m Match) Candidate {
	if m.ID%2 == 0 {
		return m.Left
	}
	return m.Right
}

func playOut(t *testing.T, tour *Tournament, choose func(Match) Candidate) {
	t.Helper()
	for guard := 0; !tour.IsDone(); guard++ {
		require.Less(t, guard, 1000, "tournament did not terminate")
		m, err := tour.ActiveMatch()
		require.NoError(t, err)
		require.NoError(t, tour.ResolveMatch(m.ID, choose(m)))
	}
}

func resultOrder(results []Result) []Candidate {
	order := make([]Candidate, len(results))
	for i, r := range results {
		order[i] = r.Candidate
	}
	return order
}

func TestNewTournamentValidation(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		wantErr    error
	}{
		{name: "empty", candidates: nil, wantErr: ErrInvalidInput},
		{name: "single candidate", candidates: []Candidate{7}, wantErr: ErrInvalidInput},
		{name: "duplicates", candidates: []Candidate{1, 2, 2, 3}, wantErr: ErrInvalidInput},
		{name: "two candidates", candidates: []Candidate{1, 2}},
		{name: "thirty two", candidates: candidateRange(32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour, err := NewTournament(tt.candidates, WithSeed(1))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tour)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, AwaitingMatch, tour.State())
			assert.Equal(t, Primary, tour.Bracket())
			assert.Equal(t, 1, tour.CurrentRound().Number)
		})
	}
}

func TestEightCandidateScenario(t *testing.T) {
	tour, err := NewTournament(candidateRange(8), WithGenerator(&sequentialGenerator{}))
	require.NoError(t, err)
	require.Len(t, tour.CurrentRound().Matches, 4)

	for i := 0; i < 4; i++ {
		m, err := tour.ActiveMatch()
		require.NoError(t, err)
		require.NoError(t, tour.ResolveMatch(m.ID, lowerWins(m)))
	}

	assert.Equal(t, 2, tour.CurrentRound().Number)
	assert.Equal(t, []Candidate{1, 3, 5, 7}, tour.Alive())
	assert.Equal(t, []Candidate{2, 4, 6, 8}, tour.FirstRoundLosers())
	assert.Equal(t, []Candidate{2, 4, 6, 8}, tour.Eliminated())
	assert.Len(t, tour.CurrentRound().Matches, 2)

	// Round 2 and the final.
	for i := 0; i < 3; i++ {
		m, err := tour.ActiveMatch()
		require.NoError(t, err)
		require.NoError(t, tour.ResolveMatch(m.ID, lowerWins(m)))
	}

	champion, ok := tour.Champion()
	require.True(t, ok)
	assert.Equal(t, Candidate(1), champion)
	assert.Equal(t, Consolation, tour.Bracket())
	assert.Equal(t, AwaitingMatch, tour.State())
	assert.Equal(t, 4, tour.CurrentRound().Number)
	require.Len(t, tour.CurrentRound().Matches, 2)

	playOut(t, tour, lowerWins)
	assert.Equal(t, Finalizing, tour.State())

	results, err := tour.Finalize()
	require.NoError(t, err)
	require.Len(t, results, 8)
	assert.Equal(t, Done, tour.State())

	assert.Equal(t, []Candidate{1, 5, 2, 3, 6, 7, 4, 8}, resultOrder(results))
	for i, r := range results {
		assert.Equal(t, i+1, r.FinalRank)
	}
	assert.Equal(t, Result{Candidate: 1, Wins: 3, TotalMatches: 3, WinPercentage: 100, FinalRank: 1}, results[0])
	assert.Equal(t, Result{Candidate: 8, Losses: 2, TotalMatches: 2, FinalRank: 8}, results[7])
}

func TestTwoCandidatesSkipConsolation(t *testing.T) {
	tour, err := NewTournament([]Candidate{10, 20}, WithSeed(5))
	require.NoError(t, err)
	require.Len(t, tour.CurrentRound().Matches, 1)

	m, err := tour.ActiveMatch()
	require.NoError(t, err)
	require.NoError(t, tour.ResolveMatch(m.ID, 20))

	assert.Equal(t, Finalizing, tour.State())
	assert.True(t, tour.IsDone())
	assert.Len(t, tour.FirstRoundLosers(), 1)
	assert.Len(t, tour.Rounds(), 1)

	results, err := tour.Finalize()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Candidate(20), results[0].Candidate)
	assert.Equal(t, Candidate(10), results[1].Candidate)
}

func TestFullThirtyTwoDesignRun(t *testing.T) {
	tour, err := NewTournament(candidateRange(32), WithSeed(32))
	require.NoError(t, err)

	playOut(t, tour, alternating)

	rounds := tour.Rounds()
	require.Len(t, rounds, 6)
	wantSizes := []int{16, 8, 4, 2, 1, 8}
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Number)
		assert.Len(t, r.Matches, wantSizes[i], "round %d", r.Number)
		if i < 5 {
			assert.Equal(t, Primary, r.Bracket)
		} else {
			assert.Equal(t, Consolation, r.Bracket)
		}
	}
	assert.Len(t, tour.Matches(), 39)
	assert.Len(t, tour.Eliminated(), 31)

	results, err := tour.Finalize()
	require.NoError(t, err)
	require.Len(t, results, 32)

	champion, ok := tour.Champion()
	require.True(t, ok)
	assert.Equal(t, champion, results[0].Candidate)
	assert.Equal(t, 5, results[0].Wins)

	totalWins := 0
	for _, r := range results {
		totalWins += r.Wins
	}
	assert.Equal(t, 39, totalWins)
}

func TestOddSizedTournamentsWithByes(t *testing.T) {
	tests := []struct {
		n               int
		wantRounds      int
		wantConsolation bool
	}{
		{n: 3, wantRounds: 2, wantConsolation: false},
		{n: 5, wantRounds: 4, wantConsolation: true},
		{n: 7, wantRounds: 4, wantConsolation: true},
		{n: 9, wantRounds: 5, wantConsolation: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			tour, err := NewTournament(candidateRange(tt.n), WithSeed(uint64(tt.n)))
			require.NoError(t, err)
			playOut(t, tour, lowerWins)

			rounds := tour.Rounds()
			assert.Len(t, rounds, tt.wantRounds, "n=%d", tt.n)
			assert.Equal(t, tt.wantConsolation, rounds[len(rounds)-1].Bracket == Consolation)

			results, err := tour.Finalize()
			require.NoError(t, err)
			require.Len(t, results, tt.n)

			resolved := 0
			for _, m := range tour.Matches() {
				require.True(t, m.Resolved(), "match %d left unresolved", m.ID)
				resolved++
			}
			totalWins := 0
			for i, r := range results {
				totalWins += r.Wins
				assert.Equal(t, i+1, r.FinalRank)
				assert.LessOrEqual(t, r.Losses, r.TotalMatches)
				assert.Equal(t, r.Wins+r.Losses, r.TotalMatches)
				assert.GreaterOrEqual(t, r.WinPercentage, 0.0)
				assert.LessOrEqual(t, r.WinPercentage, 100.0)
			}
			assert.Equal(t, resolved, totalWins)
			assert.Equal(t, Candidate(1), results[0].Candidate)
		})
	}
}

func TestResolveMatchRejectsBadSelection(t *testing.T) {
	tour, err := NewTournament(candidateRange(8), WithSeed(11))
	require.NoError(t, err)

	active, err := tour.ActiveMatch()
	require.NoError(t, err)
	outsider := Candidate(100)

	tests := []struct {
		name    string
		matchID int
		winner  Candidate
		wantErr error
	}{
		{name: "winner not in match", matchID: active.ID, winner: outsider, wantErr: ErrInvalidSelection},
		{name: "match not active", matchID: active.ID + 1, winner: active.Left, wantErr: ErrUnknownMatch},
		{name: "unknown match id", matchID: 999, winner: active.Left, wantErr: ErrUnknownMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tour.Snapshot()
			err := tour.ResolveMatch(tt.matchID, tt.winner)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, tour.Snapshot(), "state must be unchanged")
		})
	}
}

func TestNoActiveMatchOutsideAwaiting(t *testing.T) {
	tour, err := NewTournament([]Candidate{1, 2}, WithSeed(3))
	require.NoError(t, err)
	m, err := tour.ActiveMatch()
	require.NoError(t, err)
	require.NoError(t, tour.ResolveMatch(m.ID, m.Left))

	_, err = tour.ActiveMatch()
	assert.ErrorIs(t, err, ErrNoActiveMatch)
	assert.ErrorIs(t, tour.ResolveMatch(m.ID, m.Left), ErrNoActiveMatch)
}

func TestFinalizePreconditions(t *testing.T) {
	tour, err := NewTournament(candidateRange(4), WithSeed(8))
	require.NoError(t, err)

	_, err = tour.Finalize()
	assert.ErrorIs(t, err, ErrNotFinalizing)
	_, ok := tour.Results()
	assert.False(t, ok)

	playOut(t, tour, lowerWins)

	first, err := tour.Finalize()
	require.NoError(t, err)

	_, err = tour.Finalize()
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	stored, ok := tour.Results()
	require.True(t, ok)
	assert.Equal(t, first, stored)
}

func TestSameSeedSameResults(t *testing.T) {
	for _, choose := range []func(Match) Candidate{lowerWins, alternating} {
		a, err := NewTournament(candidateRange(32), WithSeed(42))
		require.NoError(t, err)
		b, err := NewTournament(candidateRange(32), WithSeed(42))
		require.NoError(t, err)

		playOut(t, a, choose)
		playOut(t, b, choose)

		ra, err := a.Finalize()
		require.NoError(t, err)
		rb, err := b.Finalize()
		require.NoError(t, err)

		assert.Equal(t, ra, rb)
		assert.Equal(t, a.Matches(), b.Matches())
	}
}

func TestMatchIDsUniqueAcrossRun(t *testing.T) {
	tour, err := NewTournament(candidateRange(32), WithSeed(77))
	require.NoError(t, err)
	playOut(t, tour, alternating)

	ids := make(map[int]bool)
	for _, m := range tour.Matches() {
		assert.False(t, ids[m.ID], "match id %d reused", m.ID)
		ids[m.ID] = true
	}
}

func TestWinnerVisibleInRoundAndHistory(t *testing.T) {
	tour, err := NewTournament(candidateRange(4), WithGenerator(&sequentialGenerator{}))
	require.NoError(t, err)

	require.NoError(t, tour.ResolveMatch(1, 2))

	history := tour.Matches()
	require.NotNil(t, history[0].Winner)
	assert.Equal(t, Candidate(2), *history[0].Winner)

	round := tour.Rounds()[0]
	require.NotNil(t, round.Matches[0].Winner)
	assert.Equal(t, Candidate(2), *round.Matches[0].Winner)

	active, err := tour.ActiveMatch()
	require.NoError(t, err)
	assert.Equal(t, 2, active.ID)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tour, err := NewTournament(candidateRange(4), WithGenerator(&sequentialGenerator{}))
	require.NoError(t, err)
	require.NoError(t, tour.ResolveMatch(1, 1))

	rounds := tour.Rounds()
	*rounds[0].Matches[0].Winner = 2
	rounds[0].Matches[1].Left = 42

	alive := tour.Alive()
	alive[0] = 99

	again := tour.Rounds()
	assert.Equal(t, Candidate(1), *again[0].Matches[0].Winner)
	assert.Equal(t, Candidate(3), again[0].Matches[1].Left)
	assert.Equal(t, Candidate(1), tour.Alive()[0])
}

func TestSnapshotJSON(t *testing.T) {
	tour, err := NewTournament(candidateRange(4), WithGenerator(&sequentialGenerator{}))
	require.NoError(t, err)

	raw, err := json.Marshal(tour.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "awaiting_match", decoded["state"])
	assert.Equal(t, "primary", decoded["bracket"])
	assert.EqualValues(t, 1, decoded["round_number"])
	assert.EqualValues(t, 2, decoded["matches_in_round"])

	active, ok := decoded["active_match"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, active["id"])
	assert.NotContains(t, active, "winner")
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	tour, err := NewTournament(candidateRange(4), WithGenerator(&sequentialGenerator{}))
	require.NoError(t, err)
	want := tour.Snapshot()

	raw, err := json.Marshal(want)
	require.NoError(t, err)
	var got Snapshot
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.Bracket, got.Bracket)
	assert.Equal(t, want.Rounds, got.Rounds)

	var state EngineState
	assert.Error(t, state.UnmarshalText([]byte("paused")))
	var kind BracketKind
	assert.Error(t, kind.UnmarshalText([]byte("losers")))
}
