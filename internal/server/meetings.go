package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"connex/internal/query"
	"connex/internal/repo"
)

type meetingOutput struct {
	Body query.MeetingView `json:"body"`
}

type meetingsOutput struct {
	Body []query.MeetingView `json:"body"`
}

const (
	viewOngoing  = "ongoing"
	viewUpcoming = "upcoming"
	viewHistory  = "history"
)

func (h handlers) meetingView(ctx context.Context, id string) (*meetingOutput, error) {
	v, err := h.query.Meeting(ctx, id)
	if err != nil {
		return nil, handleError(err)
	}
	return &meetingOutput{Body: v}, nil
}

func (h handlers) registerMeetings(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-meetings",
		Method:      http.MethodGet,
		Path:        "/meetings",
		Summary:     "List meetings",
	}, func(ctx context.Context, input *struct {
		ProjectID string `query:"projectId"`
		Status    string `query:"status"`
		Type      string `query:"type"`
		Limit     int    `query:"limit" minimum:"0"`
	}) (*meetingsOutput, error) {
		items, err := h.query.Meetings(ctx, repo.MeetingFilter{
			ProjectID: input.ProjectID,
			Status:    input.Status,
			Type:      input.Type,
			Limit:     input.Limit,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &meetingsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "meetings-by-status",
		Method:      http.MethodGet,
		Path:        "/meetings/status/{view}",
		Summary:     "Ongoing, upcoming or past meetings",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		View string `path:"view" enum:"ongoing,upcoming,history"`
	}) (*meetingsOutput, error) {
		var (
			items []query.MeetingView
			err   error
		)
		switch input.View {
		case viewOngoing:
			items, err = h.query.Ongoing(ctx)
		case viewUpcoming:
			items, err = h.query.Upcoming(ctx)
		case viewHistory:
			items, err = h.query.History(ctx)
		default:
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "view must be ongoing, upcoming or history", nil)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &meetingsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-meeting",
		Method:        http.MethodPost,
		Path:          "/meetings",
		Summary:       "Schedule meeting",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body MeetingRequest `json:"body"`
	}) (*meetingOutput, error) {
		if err := requireBody(ctx); err != nil {
			return nil, err
		}
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.CreateMeeting(ctx, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.meetingView(ctx, res.New.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-meeting",
		Method:      http.MethodGet,
		Path:        "/meetings/{id}",
		Summary:     "Get meeting",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *byID) (*meetingOutput, error) {
		return h.meetingView(ctx, input.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-meeting",
		Method:      http.MethodPut,
		Path:        "/meetings/{id}",
		Summary:     "Update meeting",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body MeetingRequest `json:"body"`
	}) (*meetingOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.UpdateMeeting(ctx, input.ID, input.Body.command(), actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.meetingView(ctx, res.New.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "join-meeting",
		Method:      http.MethodPost,
		Path:        "/meetings/{id}/join",
		Summary:     "Join meeting as the caller",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *byID) (*meetingOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		res, err := h.engine.JoinMeeting(ctx, input.ID, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return h.meetingView(ctx, res.New.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-meeting",
		Method:      http.MethodDelete,
		Path:        "/meetings/{id}",
		Summary:     "Delete meeting",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *byID) (*deletedOutput, error) {
		actor, authErr := actorFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if _, err := h.engine.DeleteMeeting(ctx, input.ID, actor); err != nil {
			return nil, handleError(err)
		}
		return deleted(input.ID), nil
	})
}
