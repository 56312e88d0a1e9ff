package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"connex/internal/query"
	"connex/internal/repo"
)

type taskOutput struct {
	Body query.TaskView `json:"body"`
}

type tasksOutput struct {
	Body []query.TaskView `json:"body"`
}

func (h handlers) taskView(ctx context.Context, id string) (*taskOutput, error) {
	v, err := h.query.Task(ctx, id)
	if err != nil {
		return nil, handleError(err)
	}
	return &taskOutput{Body: v}, nil
}

func (h handlers) listTasks(ctx context.Context, f repo.TaskFilter) (*tasksOutput, error) {
	items, err := h.query.Tasks(ctx, f)
	if err != nil {
		return nil, handleError(err)
	}
	return &tasksOutput{Body: items}, nil
}

func (h handlers) registerTasks(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, input *struct {
		ProjectID  string `query:"projectId"`
		AssignedTo string `query:"assignedTo"`
		Status     string `query:"status"`
		Limit      int    `query:"limit" minimum:"0"`
	}) (*tasksOutput, error) {
		return h.listTasks(ctx, repo.TaskFilter{
			ProjectID:  input.ProjectID,
			AssignedTo: input.AssignedTo,
			Status:     input.Status,
			Limit:      input.Limit,
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks/project/{projectId}",
		Summary:     "Tasks of a project",
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"projectId"`
	}) (*tasksOutput, error) {
		return h.listTasks(ctx, repo.TaskFilter{ProjectID: input.ProjectID})
	})

	huma.Register(api, huma.Operation{
		OperationID: "user-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks/user/{userId}",
		Summary:     "Tasks assigned to a user",
	}, func(ctx context.Context, input *struct {
		UserID string `path:"userId"`
	}) (*tasksOutput, error) {
		return h.listTasks(ctx, repo.TaskFilter{AssignedTo: input.UserID})
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body TaskRequest `json:"body"`
	}) (*taskOutput, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.CreateTask(ctx, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.taskView(ctx, res.New.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *byID) (*taskOutput, error) {
		return h.taskView(ctx, input.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Description: "Completing a task stamps completionDate, re-derives project progress and records task_completed.",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body TaskRequest `json:"body"`
	}) (*taskOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.UpdateTask(ctx, input.ID, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.taskView(ctx, res.New.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *byID) (*deletedOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := h.engine.DeleteTask(ctx, input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		return deleted(input.ID), nil
	})
}
