package audit

import (
	"fmt"

	"connex/internal/domain"
)

// Request describes an action to record. Title wins over the per-type
// template; Subject is the display name the template embeds.
type Request struct {
	Type        string
	Title       string
	Subject     string
	Assignee    string
	Description string
	Actor       domain.User
	ProjectID   string
	TaskID      string
	MeetingID   string
	Priority    string
	Members     []string
	HasDocument bool
	HasMeeting  bool
	HasGitHub   bool
	Metadata    map[string]any
}

// ForTask snapshots a task as the source of an action.
func ForTask(actionType string, t domain.Task, actor domain.User) Request {
	var members []string
	if t.AssignedTo != "" {
		members = []string{t.AssignedTo}
	}
	return Request{
		Type:        actionType,
		Subject:     t.Title,
		Description: t.Description,
		Actor:       actor,
		ProjectID:   t.ProjectID,
		TaskID:      t.ID,
		Priority:    t.Priority,
		Members:     members,
		HasDocument: len(t.RelatedDocs) > 0,
	}
}

// ForMeeting snapshots a meeting. Meetings carry no priority of their own.
func ForMeeting(actionType string, m domain.Meeting, actor domain.User) Request {
	return Request{
		Type:        actionType,
		Subject:     m.Name,
		Description: m.Description,
		Actor:       actor,
		ProjectID:   m.ProjectID,
		MeetingID:   m.ID,
		Members:     append([]string(nil), m.JoinedMembers...),
		HasMeeting:  true,
		HasDocument: m.HasDocument,
	}
}

func ForProject(actionType string, p domain.Project, actor domain.User) Request {
	return Request{
		Type:        actionType,
		Subject:     p.Name,
		Description: p.Description,
		Actor:       actor,
		ProjectID:   p.ID,
		Priority:    p.Priority,
		Members:     append([]string(nil), p.Members...),
	}
}

// Title renders the title for req.
func Title(req Request) (string, error) {
	if req.Title != "" {
		return req.Title, nil
	}
	if req.Subject == "" {
		return "", domain.Validationf("title", "title is required for %s", req.Type)
	}
	switch req.Type {
	case domain.ActionTaskCompleted:
		return fmt.Sprintf(`Task "%s" completed`, req.Subject), nil
	case domain.ActionMeetingCompleted:
		return fmt.Sprintf(`Meeting "%s" completed`, req.Subject), nil
	case domain.ActionProjectCreated:
		return fmt.Sprintf(`Project "%s" was created`, req.Subject), nil
	case domain.ActionTaskAssigned:
		assignee := req.Assignee
		if assignee == "" {
			assignee = "user"
		}
		return fmt.Sprintf(`Task "%s" assigned to %s`, req.Subject, assignee), nil
	case domain.ActionMilestoneReached:
		return fmt.Sprintf(`Milestone "%s" reached`, req.Subject), nil
	default:
		return "", domain.Validationf("title", "title is required for %s", req.Type)
	}
}

// Build turns req into an unsaved Action with snapshot defaults applied.
func Build(req Request) (domain.Action, error) {
	if req.Actor.ID == "" {
		return domain.Action{}, domain.Validationf("user", "acting user is required")
	}
	title, err := Title(req)
	if err != nil {
		return domain.Action{}, err
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	department := req.Actor.Department
	if department == "" {
		department = domain.DepartmentOther
	}
	members := []string{}
	for _, m := range req.Members {
		members, _ = domain.AddUnique(members, m)
	}
	a := domain.Action{
		Type:        req.Type,
		Title:       title,
		Description: req.Description,
		User:        req.Actor.ID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		MeetingID:   req.MeetingID,
		Priority:    priority,
		Department:  department,
		HasDocument: req.HasDocument,
		HasMeeting:  req.HasMeeting,
		HasGitHub:   req.HasGitHub,
		Members:     members,
		Metadata:    req.Metadata,
	}
	if err := a.Validate(); err != nil {
		return domain.Action{}, err
	}
	return a, nil
}
