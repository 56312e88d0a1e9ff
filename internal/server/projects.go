package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"connex/internal/domain"
	"connex/internal/query"
	"connex/internal/repo"
)

type projectOutput struct {
	Body query.ProjectView `json:"body"`
}

type projectsOutput struct {
	Body []query.ProjectView `json:"body"`
}

type deletedOutput struct {
	Body struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	} `json:"body"`
}

func deleted(id string) *deletedOutput {
	out := &deletedOutput{}
	out.Body.ID = id
	out.Body.Deleted = true
	return out
}

var mutationErrors = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusNotFound,
	http.StatusInternalServerError,
}

// projectView re-reads the project through the query service so mutations
// answer with the same expanded shape as reads.
func (h handlers) projectView(ctx context.Context, p domain.Project) (*projectOutput, error) {
	v, err := h.query.Project(ctx, p.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return &projectOutput{Body: v}, nil
}

func (h handlers) registerProjects(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
	}, func(ctx context.Context, input *struct {
		Member string `query:"member" doc:"Only projects with this member"`
		Status string `query:"status"`
		Limit  int    `query:"limit" minimum:"0"`
	}) (*projectsOutput, error) {
		items, err := h.query.Projects(ctx, repo.ProjectFilter{Member: input.Member, Status: input.Status, Limit: input.Limit})
		if err != nil {
			return nil, handleError(err)
		}
		return &projectsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body ProjectRequest `json:"body"`
	}) (*projectOutput, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.CreateProject(ctx, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.projectView(ctx, res.New)
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *byID) (*projectOutput, error) {
		v, err := h.query.Project(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &projectOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{id}",
		Summary:     "Update project",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body ProjectRequest `json:"body"`
	}) (*projectOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.UpdateProject(ctx, input.ID, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.projectView(ctx, res.New)
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}",
		Summary:     "Delete project",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *byID) (*deletedOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := h.engine.DeleteProject(ctx, input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		return deleted(input.ID), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-project-member",
		Method:      http.MethodPost,
		Path:        "/projects/{id}/members",
		Summary:     "Add a member",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ID   string        `path:"id"`
		Body MemberRequest `json:"body"`
	}) (*projectOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.AddProjectMember(ctx, input.ID, input.Body.UserID, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.projectView(ctx, res.New)
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-project-member",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}/members/{userId}",
		Summary:     "Remove a member",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ID     string `path:"id"`
		UserID string `path:"userId"`
	}) (*projectOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.RemoveProjectMember(ctx, input.ID, input.UserID, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.projectView(ctx, res.New)
	})

	huma.Register(api, huma.Operation{
		OperationID: "recalculate-project",
		Method:      http.MethodPost,
		Path:        "/projects/{id}/recalculate",
		Summary:     "Recompute progress from the project's tasks",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *byID) (*projectOutput, error) {
		if _, authErr := actorFromContext(ctx); authErr != nil {
			return nil, authErr
		}
		p, err := h.engine.RecalculateProgress(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return h.projectView(ctx, p)
	})
}
