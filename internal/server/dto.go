package server

import (
	"time"

	"connex/internal/audit"
	"connex/internal/domain"
	"connex/internal/engine"
)

// Request payloads. Pointer fields are optional; absent fields keep their
// stored value on update.

type RegisterRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email" format:"email"`
	Password   string          `json:"password" minLength:"6"`
	Role       string          `json:"role,omitempty" enum:"member,manager,admin"`
	Department string          `json:"department,omitempty" enum:"Engineering,Design,Product,Marketing,Other"`
	Contact    *domain.Contact `json:"contact,omitempty"`
	Skills     []string        `json:"skills,omitempty"`
	Bio        string          `json:"bio,omitempty"`
	Teams      []string        `json:"teams,omitempty"`
}

func (r RegisterRequest) user() domain.User {
	u := domain.User{
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Department: r.Department,
		Skills:     r.Skills,
		Bio:        r.Bio,
		Teams:      r.Teams,
	}
	if u.Role == "" {
		u.Role = domain.RoleMember
	}
	if u.Department == "" {
		u.Department = domain.DepartmentEngineering
	}
	if r.Contact != nil {
		u.Contact = *r.Contact
	}
	return u
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// UpdateUserRequest never carries a password.
type UpdateUserRequest struct {
	Name       *string         `json:"name,omitempty"`
	Role       *string         `json:"role,omitempty" enum:"member,manager,admin"`
	Department *string         `json:"department,omitempty" enum:"Engineering,Design,Product,Marketing,Other"`
	Contact    *domain.Contact `json:"contact,omitempty"`
	Skills     *[]string       `json:"skills,omitempty"`
	Bio        *string         `json:"bio,omitempty"`
	Teams      *[]string       `json:"teams,omitempty"`
	Avatar     *string         `json:"avatar,omitempty"`
}

func (r UpdateUserRequest) apply(u *domain.User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.Department != nil {
		u.Department = *r.Department
	}
	if r.Contact != nil {
		u.Contact = *r.Contact
	}
	if r.Skills != nil {
		u.Skills = *r.Skills
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Teams != nil {
		u.Teams = *r.Teams
	}
	if r.Avatar != nil {
		u.Avatar = *r.Avatar
	}
}

type ProjectRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" enum:"Planning,In Progress,Completed,On Hold,Cancelled"`
	Priority    *string    `json:"priority,omitempty" enum:"Low,Medium,High"`
	Members     *[]string  `json:"members,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Budget      *float64   `json:"budget,omitempty"`
}

func (r ProjectRequest) command() engine.ProjectCommand {
	return engine.ProjectCommand{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Members:     r.Members,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		DueDate:     r.DueDate,
		Budget:      r.Budget,
	}
}

type MemberRequest struct {
	UserID string `json:"userId"`
}

// TaskRequest accepts name as an alias of title; title wins when both are
// sent.
type TaskRequest struct {
	Title       *string              `json:"title,omitempty"`
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *string              `json:"status,omitempty" enum:"Pending,In Progress,Completed,Blocked,Cancelled"`
	Priority    *string              `json:"priority,omitempty" enum:"Low,Medium,High"`
	Category    *string              `json:"category,omitempty"`
	AssignedTo  *string              `json:"assignedTo,omitempty"`
	ProjectID   *string              `json:"projectId,omitempty"`
	Deadline    *time.Time           `json:"deadline,omitempty"`
	RelatedDocs *[]domain.RelatedDoc `json:"relatedDocs,omitempty"`
}

func (r TaskRequest) command() engine.TaskCommand {
	title := r.Title
	if title == nil {
		title = r.Name
	}
	return engine.TaskCommand{
		Title:       title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Category:    r.Category,
		AssignedTo:  r.AssignedTo,
		ProjectID:   r.ProjectID,
		Deadline:    r.Deadline,
		RelatedDocs: r.RelatedDocs,
	}
}

type MeetingRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Type          *string    `json:"type,omitempty"`
	Status        *string    `json:"status,omitempty" enum:"Scheduled,In Progress,Completed,Cancelled"`
	Time          *time.Time `json:"time,omitempty"`
	Duration      *int       `json:"duration,omitempty" minimum:"1"`
	Location      *string    `json:"location,omitempty"`
	Host          *string    `json:"host,omitempty"`
	JoinedMembers *[]string  `json:"joinedMembers,omitempty"`
	Agenda        *[]string  `json:"agenda,omitempty"`
	HasDocument   *bool      `json:"hasDocument,omitempty"`
	HasRecording  *bool      `json:"hasRecording,omitempty"`
	DocumentURL   *string    `json:"documentUrl,omitempty"`
	RecordingURL  *string    `json:"recordingUrl,omitempty"`
	ProjectID     *string    `json:"projectId,omitempty"`
}

func (r MeetingRequest) command() engine.MeetingCommand {
	return engine.MeetingCommand{
		Name:          r.Name,
		Description:   r.Description,
		Type:          r.Type,
		Status:        r.Status,
		Time:          r.Time,
		Duration:      r.Duration,
		Location:      r.Location,
		Host:          r.Host,
		JoinedMembers: r.JoinedMembers,
		Agenda:        r.Agenda,
		HasDocument:   r.HasDocument,
		HasRecording:  r.HasRecording,
		DocumentURL:   r.DocumentURL,
		RecordingURL:  r.RecordingURL,
		ProjectID:     r.ProjectID,
	}
}

// ActionRequest records a manual ledger entry such as a code review.
type ActionRequest struct {
	Type        string         `json:"type" enum:"task_completed,meeting_completed,milestone_reached,code_review,bug_fixed,design_completed,project_created,task_assigned,comment_added"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	ProjectID   string         `json:"projectId,omitempty"`
	TaskID      string         `json:"taskId,omitempty"`
	MeetingID   string         `json:"meetingId,omitempty"`
	Priority    string         `json:"priority,omitempty" enum:"Low,Medium,High"`
	HasDocument bool           `json:"hasDocument,omitempty"`
	HasMeeting  bool           `json:"hasMeeting,omitempty"`
	HasGitHub   bool           `json:"hasGitHub,omitempty"`
	Members     []string       `json:"members,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (r ActionRequest) request(actor domain.User) audit.Request {
	return audit.Request{
		Type:        r.Type,
		Title:       r.Title,
		Subject:     r.Title,
		Description: r.Description,
		Actor:       actor,
		ProjectID:   r.ProjectID,
		TaskID:      r.TaskID,
		MeetingID:   r.MeetingID,
		Priority:    r.Priority,
		Members:     r.Members,
		HasDocument: r.HasDocument,
		HasMeeting:  r.HasMeeting,
		HasGitHub:   r.HasGitHub,
		Metadata:    r.Metadata,
	}
}
