package game

import "errors"

// Move and detonation errors. None are fatal; compare with errors.Is.
var (
	ErrInvalidMoveDescriptor = errors.New("invalid move descriptor")
	ErrInsufficientMana      = errors.New("insufficient mana")
	ErrMissingActor          = errors.New("missing actor")
	ErrDegenerateDirection   = errors.New("degenerate direction")
	ErrDoubleDetonation      = errors.New("spell already detonated")

	ErrHeroBusy         = errors.New("hero busy")
	ErrControllingSpell = errors.New("hero controlling spell")
	ErrPuzzleActive     = errors.New("support puzzle active")
)
