package brackets

import (
	"cmp"
	"slices"
)

// Result итог одного кандидата за весь турнир.
type Result struct {
	Candidate     Candidate `json:"ui_id"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	TotalMatches  int       `json:"total_matches"`
	WinPercentage float64   `json:"win_percentage"`
	FinalRank     int       `json:"final_rank"`
}

// computeResults считает победы и поражения по всей истории и ранжирует.
// Bye засчитывается как победа и никогда как поражение.
func computeResults(candidates []Candidate, history []Match) []Result {
	wins := make(map[Candidate]int, len(candidates))
	losses := make(map[Candidate]int, len(candidates))
	for _, m := range history {
		if m.Winner == nil {
			continue
		}
		wins[*m.Winner]++
		if loser, ok := m.Loser(); ok {
			losses[loser]++
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		r := Result{
			Candidate: c,
			Wins:      wins[c],
			Losses:    losses[c],
		}
		r.TotalMatches = r.Wins + r.Losses
		if r.TotalMatches > 0 {
			r.WinPercentage = float64(r.Wins) / float64(r.TotalMatches) * 100
		}
		results = append(results, r)
	}

	rankResults(results)
	return results
}

// rankResults сортирует по победам, проценту побед (по убыванию) и
// поражениям (по возрастанию) и проставляет FinalRank. Полные ничьи
// сохраняют исходный порядок.
func rankResults(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.WinPercentage, a.WinPercentage); c != 0 {
			return c
		}
		return cmp.Compare(a.Losses, b.Losses)
	})
	for i := range results {
		results[i].FinalRank = i + 1
	}
}
