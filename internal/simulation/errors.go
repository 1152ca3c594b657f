package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when an action is not eligible in the
	// session's current phase. The session is left as it was.
	ErrInvalidAction = errors.New("simulation: action not eligible in current phase")
	// ErrUnknownCatalogEntry means an action or catalog document names a
	// question that does not exist.
	ErrUnknownCatalogEntry = errors.New("simulation: unknown catalog entry")
	// ErrInvalidCatalog is returned by catalog validation.
	ErrInvalidCatalog = errors.New("simulation: invalid catalog")
	// ErrInvalidRules means the outcome table is not total or has
	// overlapping rows.
	ErrInvalidRules = errors.New("simulation: invalid outcome rules")
	// ErrUnknownDrug is returned when evaluating a drug outside the table.
	ErrUnknownDrug = errors.New("simulation: unknown drug")
)

// InvalidActionError carries the phase and action of a rejected choice.
type InvalidActionError struct {
	Phase  Phase
	Action ActionID
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("simulation: action %q not eligible in phase %q", e.Action, e.Phase)
}

func (e *InvalidActionError) Unwrap() error { return ErrInvalidAction }
