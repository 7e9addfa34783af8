package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func winner(c Candidate) *Candidate {
	return &c
}

func TestComputeResults(t *testing.T) {
	history := []Match{
		{ID: 1, Left: 1, Right: 2, Winner: winner(1)},
		{ID: 2, Left: 3, Right: 3, Winner: winner(3)}, // bye
		{ID: 3, Left: 1, Right: 3, Winner: winner(3)},
		{ID: 4, Left: 2, Right: 4}, // unresolved, ignored
	}

	results := computeResults([]Candidate{1, 2, 3, 4}, history)
	require.Len(t, results, 4)

	byCandidate := make(map[Candidate]Result)
	for _, r := range results {
		byCandidate[r.Candidate] = r
	}

	assert.Equal(t, Result{Candidate: 3, Wins: 2, Losses: 0, TotalMatches: 2, WinPercentage: 100, FinalRank: 1}, byCandidate[3])
	assert.Equal(t, Result{Candidate: 1, Wins: 1, Losses: 1, TotalMatches: 2, WinPercentage: 50, FinalRank: 2}, byCandidate[1])
	assert.Equal(t, Result{Candidate: 4, FinalRank: 3}, byCandidate[4])
	assert.Equal(t, Result{Candidate: 2, Losses: 1, TotalMatches: 1, FinalRank: 4}, byCandidate[2])
}

func TestRankResultsOrdering(t *testing.T) {
	tests := []struct {
		name string
		in   []Result
		want []Candidate
	}{
		{
			name: "wins first",
			in: []Result{
				{Candidate: 1, Wins: 1, Losses: 0, WinPercentage: 100},
				{Candidate: 2, Wins: 3, Losses: 2, WinPercentage: 60},
			},
			want: []Candidate{2, 1},
		},
		{
			name: "win percentage breaks equal wins",
			in: []Result{
				{Candidate: 1, Wins: 2, Losses: 2, WinPercentage: 50},
				{Candidate: 2, Wins: 2, Losses: 1, WinPercentage: 200.0 / 3},
			},
			want: []Candidate{2, 1},
		},
		{
			name: "fewer losses breaks zero-percentage tie",
			in: []Result{
				{Candidate: 1, Wins: 0, Losses: 2},
				{Candidate: 2, Wins: 0, Losses: 1},
				{Candidate: 3, Wins: 0, Losses: 0},
			},
			want: []Candidate{3, 2, 1},
		},
		{
			name: "full ties keep input order",
			in: []Result{
				{Candidate: 9, Wins: 1, Losses: 1, WinPercentage: 50},
				{Candidate: 4, Wins: 1, Losses: 1, WinPercentage: 50},
				{Candidate: 7, Wins: 1, Losses: 1, WinPercentage: 50},
			},
			want: []Candidate{9, 4, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rankResults(tt.in)
			assert.Equal(t, tt.want, resultOrder(tt.in))
			for i, r := range tt.in {
				assert.Equal(t, i+1, r.FinalRank)
			}
		})
	}
}
