package brackets

import (
	"fmt"
	"math/rand/v2"
)

// Match это одно сравнение двух кандидатов.
// Left == Right означает bye, он разрешён сразу при создании.
type Match struct {
	ID     int        `json:"id"`
	Left   Candidate  `json:"left"`
	Right  Candidate  `json:"right"`
	Winner *Candidate `json:"winner,omitempty"`
}

func (m Match) IsBye() bool {
	return m.Left == m.Right
}

func (m Match) Resolved() bool {
	return m.Winner != nil
}

// Loser возвращает проигравшую сторону разрешённого матча (не bye).
func (m Match) Loser() (Candidate, bool) {
	if m.Winner == nil || m.IsBye() {
		return 0, false
	}
	if *m.Winner == m.Left {
		return m.Right, true
	}
	return m.Left, true
}

func (m Match) clone() Match {
	if m.Winner != nil {
		w := *m.Winner
		m.Winner = &w
	}
	return m
}

// Pairer это PairingGenerator по умолчанию: перемешивание Фишера–Йетса и
// последовательное разбиение на пары. Счётчик ID общий для всех вызовов,
// поэтому на весь турнир нужен один Pairer.
type Pairer struct {
	rng    *rand.Rand
	lastID int
}

// NewPairer создаёт Pairer поверх rng. При nil берётся случайно засеянный источник.
func NewPairer(rng *rand.Rand) *Pairer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Pairer{rng: rng}
}

func (p *Pairer) Pair(candidates []Candidate) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: cannot pair an empty candidate set", ErrInvalidInput)
	}

	shuffled := make([]Candidate, len(candidates))
	copy(shuffled, candidates)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	matches := make([]Match, 0, (len(shuffled)+1)/2)
	for i := 0; i < len(shuffled); i += 2 {
		p.lastID++
		match := Match{ID: p.lastID, Left: shuffled[i]}
		if i+1 < len(shuffled) {
			match.Right = shuffled[i+1]
		} else {
			// Bye
			winner := shuffled[i]
			match.Right = shuffled[i]
			match.Winner = &winner
		}
		matches = append(matches, match)
	}
	return matches, nil
}
