package engine

import (
	"strings"
	"time"

	"connex/internal/domain"
)

// Commands carry only the fields a caller wants changed; nil means keep.

type ProjectCommand struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	Members     *[]string
	StartDate   *time.Time
	EndDate     *time.Time
	DueDate     *time.Time
	Budget      *float64
}

type TaskCommand struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
	AssignedTo  *string
	ProjectID   *string
	Deadline    *time.Time
	RelatedDocs *[]domain.RelatedDoc
}

type MeetingCommand struct {
	Name          *string
	Description   *string
	Type          *string
	Status        *string
	Time          *time.Time
	Duration      *int
	Location      *string
	Host          *string
	JoinedMembers *[]string
	Agenda        *[]string
	HasDocument   *bool
	HasRecording  *bool
	DocumentURL   *string
	RecordingURL  *string
	ProjectID     *string
}

func checkEnum(field string, v *string, set []string) error {
	if v != nil && !domain.Contains(set, *v) {
		return domain.Validationf(field, "%s must be one of %s, got %q", field, strings.Join(set, ", "), *v)
	}
	return nil
}

func checkText(field string, v *string) error {
	if v != nil && strings.TrimSpace(*v) == "" {
		return domain.Validationf(field, "%s must not be empty", field)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c ProjectCommand) validate() error {
	if err := firstErr(
		checkText("name", c.Name),
		checkEnum("status", c.Status, domain.ProjectStates),
		checkEnum("priority", c.Priority, domain.Priorities),
	); err != nil {
		return err
	}
	if c.Budget != nil && *c.Budget < 0 {
		return domain.Validationf("budget", "budget must be >= 0")
	}
	return nil
}

func (c ProjectCommand) apply(p *domain.Project) {
	if c.Name != nil {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		p.Description = strings.TrimSpace(*c.Description)
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.Priority != nil {
		p.Priority = *c.Priority
	}
	if c.Members != nil {
		p.Members = dedupe(*c.Members)
	}
	if c.StartDate != nil {
		p.StartDate = c.StartDate.UTC()
	}
	if c.EndDate != nil {
		p.EndDate = utcPtr(*c.EndDate)
	}
	if c.DueDate != nil {
		p.DueDate = utcPtr(*c.DueDate)
	}
	if c.Budget != nil {
		p.Budget = *c.Budget
	}
}

func (c TaskCommand) validate() error {
	return firstErr(
		checkText("title", c.Title),
		checkEnum("status", c.Status, domain.TaskStates),
		checkEnum("priority", c.Priority, domain.Priorities),
		checkText("assignedTo", c.AssignedTo),
		checkText("projectId", c.ProjectID),
		checkText("category", c.Category),
	)
}

func (c TaskCommand) apply(t *domain.Task) {
	if c.Title != nil {
		t.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		t.Description = strings.TrimSpace(*c.Description)
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Category != nil {
		t.Category = strings.TrimSpace(*c.Category)
	}
	if c.AssignedTo != nil {
		t.AssignedTo = *c.AssignedTo
	}
	if c.ProjectID != nil {
		t.ProjectID = *c.ProjectID
	}
	if c.Deadline != nil {
		t.Deadline = c.Deadline.UTC()
	}
	if c.RelatedDocs != nil {
		t.RelatedDocs = append([]domain.RelatedDoc{}, (*c.RelatedDocs)...)
	}
}

func (c MeetingCommand) validate() error {
	if err := firstErr(
		checkText("name", c.Name),
		checkEnum("type", c.Type, domain.MeetingTypes),
		checkEnum("status", c.Status, domain.MeetingStates),
		checkText("host", c.Host),
	); err != nil {
		return err
	}
	if c.Duration != nil && *c.Duration <= 0 {
		return domain.Validationf("duration", "duration must be > 0")
	}
	if c.Time != nil && c.Time.IsZero() {
		return domain.Validationf("time", "time must be set")
	}
	return nil
}

func (c MeetingCommand) apply(m *domain.Meeting) {
	if c.Name != nil {
		m.Name = strings.TrimSpace(*c.Name)
	}
	if c.Description != nil {
		m.Description = strings.TrimSpace(*c.Description)
	}
	if c.Type != nil {
		m.Type = *c.Type
	}
	if c.Status != nil {
		m.Status = *c.Status
	}
	if c.Time != nil {
		m.Time = c.Time.UTC()
	}
	if c.Duration != nil {
		m.Duration = *c.Duration
	}
	if c.Location != nil {
		m.Location = strings.TrimSpace(*c.Location)
	}
	if c.Host != nil {
		m.Host = *c.Host
	}
	if c.JoinedMembers != nil {
		m.JoinedMembers = dedupe(*c.JoinedMembers)
	}
	if c.Agenda != nil {
		m.Agenda = append([]string{}, (*c.Agenda)...)
	}
	if c.HasDocument != nil {
		m.HasDocument = *c.HasDocument
	}
	if c.HasRecording != nil {
		m.HasRecording = *c.HasRecording
	}
	if c.DocumentURL != nil {
		m.DocumentURL = *c.DocumentURL
	}
	if c.RecordingURL != nil {
		m.RecordingURL = *c.RecordingURL
	}
	if c.ProjectID != nil {
		m.ProjectID = *c.ProjectID
	}
}

func dedupe(ids []string) []string {
	out := []string{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		out, _ = domain.AddUnique(out, id)
	}
	return out
}

func utcPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// Ptr returns a pointer to v, for building commands.
func Ptr[T any](v T) *T {
	return &v
}
