package consultation

import (
	"time"

	"github.com/google/uuid"

	"pharmacy-consult-sim/internal/simulation"
)

// Consultation represents the aggregate root persisted by the host: one
// trainee's current session plus the bookkeeping carried across replays.
type Consultation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TraineeID uuid.UUID `json:"trainee_id" db:"trainee_id"`

	// Current simulation state, replaced wholesale on every action
	Session *simulation.Session `json:"session" db:"session"`

	// Cross-session counter, never seen by the engine
	Playthrough simulation.Playthrough `json:"playthrough" db:"playthrough"`

	// Optimistic concurrency token, bumped by every successful save
	Version int `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConsultationView is what the API returns. The hidden conditions stay on
// the server.
type ConsultationView struct {
	ID          uuid.UUID         `json:"id"`
	TraineeID   uuid.UUID         `json:"trainee_id"`
	Playthrough int               `json:"playthrough"`
	Hints       []simulation.Hint `json:"hints,omitempty"`
	simulation.View
}
