package engine

import (
	"context"
	"errors"

	"connex/internal/audit"
	"connex/internal/domain"
)

func (e Engine) requireProject(ctx context.Context, projectID string) error {
	if _, err := e.Store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("projectId", "project %s does not exist", projectID)
		}
		return err
	}
	return nil
}

func (e Engine) assigneeName(ctx context.Context, userID string) string {
	u, err := e.Store.GetUser(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Name
}

// CreateTask persists a new task, adds it to its project, re-derives the
// project's progress and records task_assigned.
func (e Engine) CreateTask(ctx context.Context, cmd TaskCommand, actor domain.User) (Result[domain.Task], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Task](err)
	}
	t := domain.Task{
		Status:      domain.TaskPending,
		Priority:    domain.PriorityMedium,
		Category:    domain.DefaultCategory,
		RelatedDocs: []domain.RelatedDoc{},
		CreatedBy:   actor.ID,
	}
	cmd.apply(&t)
	if t.Status == domain.TaskCompleted {
		now := e.now()
		t.CompletionDate = &now
	}
	if err := t.Validate(); err != nil {
		return failed[domain.Task](err)
	}
	if err := e.requireProject(ctx, t.ProjectID); err != nil {
		return failed[domain.Task](err)
	}
	saved, err := e.Store.SaveTask(ctx, t)
	if err != nil {
		return failed[domain.Task](err)
	}
	e.cascadeProject(ctx, saved.ProjectID, addTaskRef(saved.ID))

	req := audit.ForTask(domain.ActionTaskAssigned, saved, actor)
	req.Assignee = e.assigneeName(ctx, saved.AssignedTo)
	e.emit(ctx, req)
	return Result[domain.Task]{Outcome: OutcomeCreated, New: saved}, nil
}

// UpdateTask merges cmd into the task. Entering Completed stamps
// completionDate and records task_completed; leaving it clears the date.
func (e Engine) UpdateTask(ctx context.Context, id string, cmd TaskCommand, actor domain.User) (Result[domain.Task], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Task](err)
	}
	unlock := e.lock(taskKey(id))
	defer unlock()
	old, err := e.Store.GetTask(ctx, id)
	if err != nil {
		return failed[domain.Task](err)
	}
	t := old
	cmd.apply(&t)
	if e.Config.Workflow.StrictTransitions {
		if err := CheckTaskTransition(old.Status, t.Status, e.Config.Workflow.AllowReopen); err != nil {
			return failed[domain.Task](err)
		}
	}
	switch {
	case t.Status != domain.TaskCompleted:
		t.CompletionDate = nil
	case old.Status != domain.TaskCompleted:
		now := e.now()
		t.CompletionDate = &now
	}
	if err := t.Validate(); err != nil {
		return failed[domain.Task](err)
	}
	if t.ProjectID != old.ProjectID {
		if err := e.requireProject(ctx, t.ProjectID); err != nil {
			return failed[domain.Task](err)
		}
	}
	saved, err := e.Store.SaveTask(ctx, t)
	if err != nil {
		return failed[domain.Task](err)
	}

	event := DetectTask(&old, saved)
	if saved.ProjectID != old.ProjectID {
		e.cascadeProject(ctx, old.ProjectID, dropTaskRef(saved.ID))
	}
	e.cascadeProject(ctx, saved.ProjectID, addTaskRef(saved.ID))
	if event != nil {
		e.emit(ctx, audit.ForTask(event.Type, saved, actor))
	}
	if e.Config.Audit.RecordReassignment && saved.AssignedTo != old.AssignedTo {
		req := audit.ForTask(domain.ActionTaskAssigned, saved, actor)
		req.Assignee = e.assigneeName(ctx, saved.AssignedTo)
		e.emit(ctx, req)
	}
	return Result[domain.Task]{Outcome: OutcomeUpdated, Old: &old, New: saved}, nil
}

// DeleteTask removes the task and re-derives its project's progress.
func (e Engine) DeleteTask(ctx context.Context, id string, actor domain.User) (Result[domain.Task], error) {
	if err := requireActor(actor); err != nil {
		return failed[domain.Task](err)
	}
	unlock := e.lock(taskKey(id))
	defer unlock()
	old, err := e.Store.GetTask(ctx, id)
	if err != nil {
		return failed[domain.Task](err)
	}
	if err := e.Store.DeleteTask(ctx, id); err != nil {
		return failed[domain.Task](err)
	}
	e.cascadeProject(ctx, old.ProjectID, dropTaskRef(id))
	return Result[domain.Task]{Outcome: OutcomeDeleted, Old: &old}, nil
}

func addTaskRef(taskID string) func(*domain.Project) error {
	return func(p *domain.Project) error {
		p.Tasks, _ = domain.AddUnique(p.Tasks, taskID)
		return nil
	}
}

func dropTaskRef(taskID string) func(*domain.Project) error {
	return func(p *domain.Project) error {
		p.Tasks, _ = domain.Remove(p.Tasks, taskID)
		return nil
	}
}
