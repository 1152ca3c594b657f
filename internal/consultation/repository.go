package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("consultation not found")
	// ErrConflict means the record changed since it was read.
	ErrConflict = errors.New("consultation was modified concurrently")
)

// Repository stores consultations. Save inserts when Version is zero and
// otherwise updates only if the stored version still matches; on success
// it bumps c.Version.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Save(ctx context.Context, c *Consultation) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	query := `SELECT id, trainee_id, session, playthrough, version, created_at, updated_at FROM consultations WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	var c Consultation
	var sessionJSON, playthroughJSON []byte

	err := row.Scan(
		&c.ID,
		&c.TraineeID,
		&sessionJSON,
		&playthroughJSON,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(sessionJSON) > 0 {
		if err := json.Unmarshal(sessionJSON, &c.Session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
	}
	if len(playthroughJSON) > 0 {
		if err := json.Unmarshal(playthroughJSON, &c.Playthrough); err != nil {
			return nil, fmt.Errorf("failed to unmarshal playthrough: %w", err)
		}
	}

	return &c, nil
}

func (r *postgresRepo) Save(ctx context.Context, c *Consultation) error {
	sessionJSON, err := json.Marshal(c.Session)
	if err != nil {
		return err
	}
	playthroughJSON, err := json.Marshal(c.Playthrough)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	var res sql.Result
	if c.Version == 0 {
		query := `
			INSERT INTO consultations (id, trainee_id, session, playthrough, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`
		res, err = r.db.ExecContext(ctx, query,
			c.ID, c.TraineeID, sessionJSON, playthroughJSON, c.CreatedAt, now)
	} else {
		query := `
			UPDATE consultations SET
				session = $2,
				playthrough = $3,
				version = version + 1,
				updated_at = $4
			WHERE id = $1 AND version = $5
		`
		res, err = r.db.ExecContext(ctx, query,
			c.ID, sessionJSON, playthroughJSON, now, c.Version)
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}
