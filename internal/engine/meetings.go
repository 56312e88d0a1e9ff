package engine

import (
	"context"

	"connex/internal/audit"
	"connex/internal/domain"
)

func (e Engine) CreateMeeting(ctx context.Context, cmd MeetingCommand, actor domain.User) (Result[domain.Meeting], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Meeting](err)
	}
	m := domain.Meeting{
		Type:          domain.DefaultMeetingType,
		Status:        domain.MeetingScheduled,
		Duration:      domain.DefaultMeetingDuration,
		Location:      domain.DefaultMeetingLocation,
		Host:          actor.ID,
		JoinedMembers: []string{},
		Agenda:        []string{},
	}
	cmd.apply(&m)
	if m.Location == "" {
		m.Location = domain.DefaultMeetingLocation
	}
	if err := m.Validate(); err != nil {
		return failed[domain.Meeting](err)
	}
	if m.ProjectID != "" {
		if err := e.requireProject(ctx, m.ProjectID); err != nil {
			return failed[domain.Meeting](err)
		}
	}
	saved, err := e.Store.SaveMeeting(ctx, m)
	if err != nil {
		return failed[domain.Meeting](err)
	}
	return Result[domain.Meeting]{Outcome: OutcomeCreated, New: saved}, nil
}

// UpdateMeeting merges cmd and records meeting_completed on entry to
// Completed.
func (e Engine) UpdateMeeting(ctx context.Context, id string, cmd MeetingCommand, actor domain.User) (Result[domain.Meeting], error) {
	if err := firstErr(requireActor(actor), cmd.validate()); err != nil {
		return failed[domain.Meeting](err)
	}
	old, saved, err := e.editMeeting(ctx, id, func(m *domain.Meeting) (bool, error) {
		prev := m.Status
		cmd.apply(m)
		if e.Config.Workflow.StrictTransitions {
			if err := CheckMeetingTransition(prev, m.Status, e.Config.Workflow.AllowReopen); err != nil {
				return false, err
			}
		}
		return true, m.Validate()
	})
	if err != nil {
		return failed[domain.Meeting](err)
	}
	if event := DetectMeeting(&old, saved); event != nil {
		e.emit(ctx, audit.ForMeeting(event.Type, saved, actor))
	}
	return Result[domain.Meeting]{Outcome: OutcomeUpdated, Old: &old, New: saved}, nil
}

// JoinMeeting adds actor to the joined set. Joining twice is a no-op.
func (e Engine) JoinMeeting(ctx context.Context, id string, actor domain.User) (Result[domain.Meeting], error) {
	if err := requireActor(actor); err != nil {
		return failed[domain.Meeting](err)
	}
	old, saved, err := e.editMeeting(ctx, id, func(m *domain.Meeting) (bool, error) {
		var added bool
		m.JoinedMembers, added = domain.AddUnique(append([]string{}, m.JoinedMembers...), actor.ID)
		return added, nil
	})
	if err != nil {
		return failed[domain.Meeting](err)
	}
	return Result[domain.Meeting]{Outcome: OutcomeUpdated, Old: &old, New: saved}, nil
}

func (e Engine) DeleteMeeting(ctx context.Context, id string, actor domain.User) (Result[domain.Meeting], error) {
	if err := requireActor(actor); err != nil {
		return failed[domain.Meeting](err)
	}
	unlock := e.lock(meetingKey(id))
	defer unlock()
	old, err := e.Store.GetMeeting(ctx, id)
	if err != nil {
		return failed[domain.Meeting](err)
	}
	if err := e.Store.DeleteMeeting(ctx, id); err != nil {
		return failed[domain.Meeting](err)
	}
	return Result[domain.Meeting]{Outcome: OutcomeDeleted, Old: &old}, nil
}

// editMeeting applies edit under the meeting's lock. It saves only when edit
// reports a change and returns no error.
func (e Engine) editMeeting(ctx context.Context, id string, edit func(*domain.Meeting) (bool, error)) (domain.Meeting, domain.Meeting, error) {
	unlock := e.lock(meetingKey(id))
	defer unlock()
	old, err := e.Store.GetMeeting(ctx, id)
	if err != nil {
		return domain.Meeting{}, domain.Meeting{}, err
	}
	m := old
	changed, err := edit(&m)
	if err != nil {
		return domain.Meeting{}, domain.Meeting{}, err
	}
	if !changed {
		return old, old, nil
	}
	if m.ProjectID != "" && m.ProjectID != old.ProjectID {
		if err := e.requireProject(ctx, m.ProjectID); err != nil {
			return domain.Meeting{}, domain.Meeting{}, err
		}
	}
	saved, err := e.Store.SaveMeeting(ctx, m)
	if err != nil {
		return domain.Meeting{}, domain.Meeting{}, err
	}
	return old, saved, nil
}
