package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"connex/internal/domain"
	"connex/internal/repo"
)

type userOutput struct {
	Body domain.User `json:"body"`
}

type usersOutput struct {
	Body []domain.User `json:"body"`
}

func (h handlers) registerUsers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
	}, func(ctx context.Context, input *listQuery) (*usersOutput, error) {
		items, err := h.query.Users(ctx, repo.UserFilter{Limit: input.Limit})
		if err != nil {
			return nil, handleError(err)
		}
		return &usersOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get user",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *byID) (*userOutput, error) {
		u, err := h.query.User(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &userOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/users/{id}",
		Summary:     "Update a profile (self or admin)",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body UpdateUserRequest `json:"body"`
	}) (*userOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if actor.ID != input.ID && actor.Role != domain.RoleAdmin {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "only the user or an admin may update this profile", nil)
		}
		if input.Body.Role != nil && *input.Body.Role != actor.Role && actor.Role != domain.RoleAdmin {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "only an admin may change roles", map[string]any{"field": "role"})
		}
		u, err := h.users.GetUser(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		input.Body.apply(&u)
		if err := u.Validate(); err != nil {
			return nil, handleError(err)
		}
		saved, err := h.users.SaveUser(ctx, u)
		if err != nil {
			return nil, handleError(err)
		}
		return &userOutput{Body: saved}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-members",
		Method:      http.MethodGet,
		Path:        "/users/project/{projectId}",
		Summary:     "Members of a project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string `path:"projectId"`
	}) (*usersOutput, error) {
		items, err := h.query.ProjectMembers(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &usersOutput{Body: items}, nil
	})
}
