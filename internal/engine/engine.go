package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"connex/internal/audit"
	"connex/internal/config"
	"connex/internal/domain"
)

type UserStore interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}

type ProjectStore interface {
	GetProject(ctx context.Context, id string) (domain.Project, error)
	SaveProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type TaskStore interface {
	GetTask(ctx context.Context, id string) (domain.Task, error)
	SaveTask(ctx context.Context, t domain.Task) (domain.Task, error)
	CountTasksByStatus(ctx context.Context, projectID string) (map[string]int, error)
	DeleteTask(ctx context.Context, id string) error
}

type MeetingStore interface {
	GetMeeting(ctx context.Context, id string) (domain.Meeting, error)
	SaveMeeting(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// Store is everything the gateway writes through.
type Store interface {
	UserStore
	ProjectStore
	TaskStore
	MeetingStore
}

// ActionRecorder receives cascade actions. Emit never reports failure.
type ActionRecorder interface {
	Emit(ctx context.Context, req audit.Request)
}

// Engine is the mutation gateway. Each method validates, merges, persists and
// then runs the cascade: transition detection, progress recalculation and
// action recording. Engines built without New share one process-wide lock
// table.
type Engine struct {
	Store    Store
	Recorder ActionRecorder
	Config   *config.Config
	Logger   *log.Logger
	Now      func() time.Time
	locks    *keyedMutex
}

func New(store Store, rec ActionRecorder, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		Store:    store,
		Recorder: rec,
		Config:   cfg,
		Logger:   log.Default(),
		Now:      time.Now,
		locks:    newKeyedMutex(),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

func (e Engine) emit(ctx context.Context, req audit.Request) {
	if e.Recorder == nil {
		return
	}
	e.Recorder.Emit(ctx, req)
}

type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeUpdated          Outcome = "updated"
	OutcomeDeleted          Outcome = "deleted"
	OutcomeValidationError  Outcome = "validation_error"
	OutcomeNotFound         Outcome = "not_found"
	OutcomePersistenceError Outcome = "persistence_error"
)

// Result carries the snapshots of a mutation. Old is nil on creation.
type Result[T any] struct {
	Outcome Outcome
	Old     *T
	New     T
}

// OutcomeOf classifies a gateway error. A nil error maps to success.
func OutcomeOf(err error, success Outcome) Outcome {
	switch {
	case err == nil:
		return success
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidationError
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomePersistenceError
	}
}

func failed[T any](err error) (Result[T], error) {
	return Result[T]{Outcome: OutcomeOf(err, "")}, err
}

func requireActor(actor domain.User) error {
	if actor.ID == "" {
		return domain.Validationf("actor", "acting user is required")
	}
	return nil
}
