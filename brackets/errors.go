package brackets

import "errors"

// Ошибки движка турнира. Все они являются нарушениями предусловий и
// обнаруживаются синхронно в вызове, который их вызвал.
var (
	ErrInvalidInput     = errors.New("invalid tournament input")
	ErrInvalidSelection = errors.New("winner is not a side of the active match")
	ErrUnknownMatch     = errors.New("match is not the active match")
	ErrNoActiveMatch    = errors.New("no active match")
	ErrNotFinalizing    = errors.New("tournament is not ready to be finalized")
	ErrAlreadyFinalized = errors.New("tournament has already been finalized")
)
