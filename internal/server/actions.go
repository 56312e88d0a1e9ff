package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"connex/internal/query"
)

type actionOutput struct {
	Body query.ActionView `json:"body"`
}

type actionsOutput struct {
	Body []query.ActionView `json:"body"`
}

func (h handlers) registerActions(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-actions",
		Method:      http.MethodGet,
		Path:        "/actions",
		Summary:     "List ledger entries, newest first",
	}, func(ctx context.Context, input *struct {
		ProjectID  string `query:"projectId"`
		UserID     string `query:"userId"`
		Type       string `query:"type"`
		Department string `query:"department" doc:"Department filter; all disables it"`
		Limit      int    `query:"limit" minimum:"0"`
	}) (*actionsOutput, error) {
		items, err := h.query.Actions(ctx, query.ActionQuery{
			ProjectID:  input.ProjectID,
			UserID:     input.UserID,
			Type:       input.Type,
			Department: input.Department,
			Limit:      input.Limit,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &actionsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "timeline",
		Method:      http.MethodGet,
		Path:        "/actions/recent/timeline",
		Summary:     "Recent actions of a project",
	}, func(ctx context.Context, input *struct {
		ProjectID  string `query:"projectId"`
		Department string `query:"department" default:"all"`
	}) (*actionsOutput, error) {
		items, err := h.query.Timeline(ctx, input.ProjectID, input.Department)
		if err != nil {
			return nil, handleError(err)
		}
		return &actionsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-action",
		Method:      http.MethodGet,
		Path:        "/actions/{id}",
		Summary:     "Get action",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *byID) (*actionOutput, error) {
		v, err := h.query.Action(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &actionOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "record-action",
		Method:        http.MethodPost,
		Path:          "/actions",
		Summary:       "Record a manual action",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body ActionRequest `json:"body"`
	}) (*actionOutput, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		a, err := h.recorder.Record(ctx, input.Body.request(actor))
		if err != nil {
			return nil, handleError(err)
		}
		v, err := h.query.Action(ctx, a.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &actionOutput{Body: v}, nil
	})
}
