package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmacy-consult-sim/internal/observability/metrics"
	"pharmacy-consult-sim/internal/simulation"
)

// ReportService defines the interface for sending end-of-session reports.
// We define it here to decouple from the delivery channel.
type ReportService interface {
	SendSessionReport(ctx context.Context, c Consultation) error
}

type Service interface {
	CreateConsultation(ctx context.Context, traineeID uuid.UUID, forced *simulation.HiddenConditions) (*Consultation, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error)
	// ApplyAction advances the consultation by one action. A rejected action
	// returns the stored consultation unchanged together with an error
	// wrapping simulation.ErrInvalidAction.
	ApplyAction(ctx context.Context, id uuid.UUID, action simulation.ActionID, payload string) (*Consultation, error)
	Conclude(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Restart(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Reset(ctx context.Context, id uuid.UUID) (*Consultation, error)
	View(c *Consultation) ConsultationView
}

type service struct {
	repo      Repository
	engine    *simulation.Engine
	reportSvc ReportService
	metrics   *metrics.SimulationMetrics
	logger    *zap.Logger
}

// NewService wires the consultation workflow. report and m may be nil.
func NewService(repo Repository, engine *simulation.Engine, report ReportService, m *metrics.SimulationMetrics, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:      repo,
		engine:    engine,
		reportSvc: report,
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) CreateConsultation(ctx context.Context, traineeID uuid.UUID, forced *simulation.HiddenConditions) (*Consultation, error) {
	now := time.Now().UTC()
	c := &Consultation{
		ID:          uuid.New(),
		TraineeID:   traineeID,
		Session:     s.engine.StartSession(simulation.SessionConfig{ForcedHidden: forced}),
		Playthrough: simulation.FirstPlaythrough(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	s.metrics.ObserveSessionStarted("new")
	s.logger.Info("consultation created",
		zap.String("consultation_id", c.ID.String()),
		zap.String("trainee_id", traineeID.String()),
		zap.Bool("forced_hidden", forced != nil),
	)
	return c, nil
}

func (s *service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ApplyAction(ctx context.Context, id uuid.UUID, action simulation.ActionID, payload string) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := c.Session

	next, err := s.engine.Apply(prev, action, payload)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidAction) {
			s.metrics.ObserveRejected(string(prev.Phase))
			s.logger.Info("action rejected",
				zap.String("consultation_id", id.String()),
				zap.String("phase", string(prev.Phase)),
				zap.String("action", string(action)),
			)
			return c, err
		}
		return nil, err
	}

	c.Session = next
	if action == simulation.ActionRestart {
		c.Playthrough = c.Playthrough.Advance(prev)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}

	s.metrics.ObserveAction(string(action))
	if action == simulation.ActionRestart {
		s.metrics.ObserveSessionStarted("restart")
	}
	s.logger.Debug("action applied",
		zap.String("consultation_id", id.String()),
		zap.String("action", string(action)),
		zap.String("phase", string(next.Phase)),
		zap.Int("score", next.Score),
	)

	if next.Terminated && !prev.Terminated {
		s.finish(ctx, c)
	}
	return c, nil
}

func (s *service) Conclude(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := s.engine.Conclude(c.Session)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidAction) {
			s.metrics.ObserveRejected(string(c.Session.Phase))
			return c, err
		}
		return nil, err
	}
	c.Session = next
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	return c, nil
}

func (s *service) Restart(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.ApplyAction(ctx, id, simulation.ActionRestart, "")
}

// Reset drops the current session and the replay bookkeeping.
func (s *service) Reset(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Session = s.engine.ResetSession()
	c.Playthrough = simulation.FirstPlaythrough()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	s.metrics.ObserveSessionStarted("reset")
	s.logger.Info("consultation reset", zap.String("consultation_id", id.String()))
	return c, nil
}

func (s *service) View(c *Consultation) ConsultationView {
	v := ConsultationView{
		ID:          c.ID,
		TraineeID:   c.TraineeID,
		Playthrough: c.Playthrough.Count,
		View:        s.engine.View(c.Session),
	}
	if c.Session.Phase == simulation.PhasePresentation {
		v.Hints = c.Playthrough.Hints()
	}
	return v
}

// finish records the ending and sends the report. Report failures are
// logged and never fail the action.
func (s *service) finish(ctx context.Context, c *Consultation) {
	ending, severity := "senior_consult", ""
	if o := c.Session.Outcome; o != nil {
		ending, severity = string(o.Drug), string(o.Severity)
	}
	s.metrics.ObserveOutcome(ending, severity, c.Session.Score)
	s.logger.Info("consultation finished",
		zap.String("consultation_id", c.ID.String()),
		zap.String("ending", ending),
		zap.String("severity", severity),
		zap.Int("score", c.Session.Score),
	)

	if s.reportSvc == nil {
		return
	}
	if err := s.reportSvc.SendSessionReport(ctx, *c); err != nil {
		s.logger.Warn("failed to send session report",
			zap.String("consultation_id", c.ID.String()),
			zap.Error(err),
		)
	}
}
