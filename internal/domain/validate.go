package domain

import (
	"net/mail"
	"strings"
)

func requireOneOf(field, value string, set []string) error {
	if !Contains(set, value) {
		return Validationf(field, "%s must be one of %s, got %q", field, strings.Join(set, ", "), value)
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Validationf(field, "%s is required", field)
	}
	return nil
}

func (u User) Validate() error {
	if err := requireText("name", u.Name); err != nil {
		return err
	}
	if err := requireText("email", u.Email); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return Validationf("email", "email %q is invalid", u.Email)
	}
	if err := requireOneOf("role", u.Role, Roles); err != nil {
		return err
	}
	return requireOneOf("department", u.Department, Departments)
}

func (p Project) Validate() error {
	if err := requireText("name", p.Name); err != nil {
		return err
	}
	if err := requireOneOf("status", p.Status, ProjectStates); err != nil {
		return err
	}
	if err := requireOneOf("priority", p.Priority, Priorities); err != nil {
		return err
	}
	if p.Budget < 0 {
		return Validationf("budget", "budget must be >= 0")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return Validationf("progress", "progress must be within [0,100], got %d", p.Progress)
	}
	return requireText("createdBy", p.CreatedBy)
}

func (t Task) Validate() error {
	if err := requireText("title", t.Title); err != nil {
		return err
	}
	if err := requireOneOf("status", t.Status, TaskStates); err != nil {
		return err
	}
	if err := requireOneOf("priority", t.Priority, Priorities); err != nil {
		return err
	}
	if err := requireText("assignedTo", t.AssignedTo); err != nil {
		return err
	}
	if err := requireText("projectId", t.ProjectID); err != nil {
		return err
	}
	if t.Deadline.IsZero() {
		return Validationf("deadline", "deadline is required")
	}
	if err := requireText("createdBy", t.CreatedBy); err != nil {
		return err
	}
	if (t.Status == TaskCompleted) != (t.CompletionDate != nil) {
		return Validationf("completionDate", "completionDate must be set only when status is %s", TaskCompleted)
	}
	for _, d := range t.RelatedDocs {
		if err := requireText("relatedDocs.url", d.URL); err != nil {
			return err
		}
	}
	return nil
}

func (m Meeting) Validate() error {
	if err := requireText("name", m.Name); err != nil {
		return err
	}
	if err := requireOneOf("type", m.Type, MeetingTypes); err != nil {
		return err
	}
	if err := requireOneOf("status", m.Status, MeetingStates); err != nil {
		return err
	}
	if m.Time.IsZero() {
		return Validationf("time", "time is required")
	}
	if m.Duration <= 0 {
		return Validationf("duration", "duration must be > 0")
	}
	return requireText("host", m.Host)
}

func (a Action) Validate() error {
	if err := requireOneOf("type", a.Type, ActionTypes); err != nil {
		return err
	}
	if err := requireText("title", a.Title); err != nil {
		return err
	}
	if err := requireText("user", a.User); err != nil {
		return err
	}
	if err := requireOneOf("priority", a.Priority, Priorities); err != nil {
		return err
	}
	return requireOneOf("department", a.Department, Departments)
}
