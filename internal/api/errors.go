package api

import (
	"errors"
	"net/http"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"
)

// statusForError maps engine sentinels to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrHeroBusy),
		errors.Is(err, game.ErrControllingSpell),
		errors.Is(err, game.ErrPuzzleActive),
		errors.Is(err, game.ErrDoubleDetonation):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientMana):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrMissingActor):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidMoveDescriptor):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

// writeEngineError writes err with its mapped status
func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, err.Error(), statusForError(err))
}
