package engine

import (
	"context"
	"errors"

	"connex/internal/audit"
	"connex/internal/domain"
)

// CreateProject persists a new project owned by actor and records
// project_created.
func (e Engine) CreateProject(ctx context.Context, cmd ProjectCommand, actor domain.User) (Result[domain.Project], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Project](err)
	}
	if cmd.Name == nil {
		return failed[domain.Project](domain.Validationf("name", "name is required"))
	}
	p := domain.Project{
		Status:    domain.ProjectPlanning,
		Priority:  domain.PriorityMedium,
		Members:   []string{},
		Tasks:     []string{},
		CreatedBy: actor.ID,
	}
	cmd.apply(&p)
	if p.StartDate.IsZero() {
		p.StartDate = e.now()
	}
	if err := p.Validate(); err != nil {
		return failed[domain.Project](err)
	}
	saved, err := e.Store.SaveProject(ctx, p)
	if err != nil {
		return failed[domain.Project](err)
	}
	e.emit(ctx, audit.ForProject(domain.ActionProjectCreated, saved, actor))
	return Result[domain.Project]{Outcome: OutcomeCreated, New: saved}, nil
}

// UpdateProject merges cmd into the project and re-derives progress in the
// same locked write.
func (e Engine) UpdateProject(ctx context.Context, id string, cmd ProjectCommand, actor domain.User) (Result[domain.Project], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Project](err)
	}
	var old domain.Project
	saved, err := e.refreshProject(ctx, id, func(p *domain.Project) error {
		old = *p
		cmd.apply(p)
		return p.Validate()
	})
	if err != nil {
		return failed[domain.Project](err)
	}
	return Result[domain.Project]{Outcome: OutcomeUpdated, Old: &old, New: saved}, nil
}

// AddProjectMember inserts userID into the member set. Adding an existing
// member changes nothing.
func (e Engine) AddProjectMember(ctx context.Context, projectID, userID string, actor domain.User) (Result[domain.Project], error) {
	if err := firstErr(requireActor(actor), checkText("userId", &userID)); err != nil {
		return failed[domain.Project](err)
	}
	if _, err := e.Store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.Validationf("userId", "user %s does not exist", userID)
		}
		return failed[domain.Project](err)
	}
	return e.editMembers(ctx, projectID, func(members []string) []string {
		out, _ := domain.AddUnique(members, userID)
		return out
	})
}

func (e Engine) RemoveProjectMember(ctx context.Context, projectID, userID string, actor domain.User) (Result[domain.Project], error) {
	if err := requireActor(actor); err != nil {
		return failed[domain.Project](err)
	}
	return e.editMembers(ctx, projectID, func(members []string) []string {
		out, _ := domain.Remove(members, userID)
		return out
	})
}

func (e Engine) editMembers(ctx context.Context, projectID string, edit func([]string) []string) (Result[domain.Project], error) {
	var old domain.Project
	saved, err := e.refreshProject(ctx, projectID, func(p *domain.Project) error {
		old = *p
		p.Members = edit(append([]string{}, p.Members...))
		return nil
	})
	if err != nil {
		return failed[domain.Project](err)
	}
	return Result[domain.Project]{Outcome: OutcomeUpdated, Old: &old, New: saved}, nil
}

// DeleteProject removes the project. Its tasks keep their projectId.
func (e Engine) DeleteProject(ctx context.Context, id string, actor domain.User) (Result[domain.Project], error) {
	if err := requireActor(actor); err != nil {
		return failed[domain.Project](err)
	}
	unlock := e.lock(projectKey(id))
	defer unlock()
	p, err := e.Store.GetProject(ctx, id)
	if err != nil {
		return failed[domain.Project](err)
	}
	if err := e.Store.DeleteProject(ctx, id); err != nil {
		return failed[domain.Project](err)
	}
	return Result[domain.Project]{Outcome: OutcomeDeleted, Old: &p}, nil
}
