package domain

import (
	"strings"
	"time"
)

// Entity kinds handled by the store.
const (
	KindUser    = "user"
	KindProject = "project"
	KindTask    = "task"
	KindMeeting = "meeting"
	KindAction  = "action"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const (
	DepartmentEngineering = "Engineering"
	DepartmentDesign      = "Design"
	DepartmentProduct     = "Product"
	DepartmentMarketing   = "Marketing"
	DepartmentOther       = "Other"
)

const (
	RoleMember  = "member"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

const (
	ProjectPlanning   = "Planning"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
	ProjectCancelled  = "Cancelled"
)

const (
	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
	TaskBlocked    = "Blocked"
	TaskCancelled  = "Cancelled"
)

const (
	MeetingScheduled  = "Scheduled"
	MeetingInProgress = "In Progress"
	MeetingCompleted  = "Completed"
	MeetingCancelled  = "Cancelled"
)

const (
	DefaultCategory        = "General"
	DefaultMeetingType     = "Other"
	DefaultMeetingDuration = 60
	DefaultMeetingLocation = "Virtual Meeting"
)

// Action types. The set is closed.
const (
	ActionTaskCompleted    = "task_completed"
	ActionMeetingCompleted = "meeting_completed"
	ActionMilestoneReached = "milestone_reached"
	ActionCodeReview       = "code_review"
	ActionBugFixed         = "bug_fixed"
	ActionDesignCompleted  = "design_completed"
	ActionProjectCreated   = "project_created"
	ActionTaskAssigned     = "task_assigned"
	ActionCommentAdded     = "comment_added"
)

var (
	Priorities    = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Departments   = []string{DepartmentEngineering, DepartmentDesign, DepartmentProduct, DepartmentMarketing, DepartmentOther}
	Roles         = []string{RoleMember, RoleManager, RoleAdmin}
	ProjectStates = []string{ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectCancelled}
	TaskStates    = []string{TaskPending, TaskInProgress, TaskCompleted, TaskBlocked, TaskCancelled}
	MeetingStates = []string{MeetingScheduled, MeetingInProgress, MeetingCompleted, MeetingCancelled}
	MeetingTypes  = []string{"Daily", "Planning", "Review", "Sprint", "Technical", "External", "Strategy", "Other"}
	ActionTypes   = []string{ActionTaskCompleted, ActionMeetingCompleted, ActionMilestoneReached, ActionCodeReview, ActionBugFixed, ActionDesignCompleted, ActionProjectCreated, ActionTaskAssigned, ActionCommentAdded}
)

type Contact struct {
	Email    string `json:"email,omitempty"`
	Discord  string `json:"discord,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Phone    string `json:"phone,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// User is read-only for the cascade. PasswordHash never leaves the store layer
// through JSON.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	Contact      Contact   `json:"contact"`
	Skills       []string  `json:"skills"`
	Bio          string    `json:"bio,omitempty"`
	Teams        []string  `json:"teams"`
	JoinDate     time.Time `json:"joinDate"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Members     []string   `json:"members"`
	Tasks       []string   `json:"tasks"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Budget      float64    `json:"budget"`
	Progress    int        `json:"progress"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type RelatedDoc struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Task belongs to one project. Name mirrors Title; only the title is stored.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	Category       string       `json:"category"`
	AssignedTo     string       `json:"assignedTo"`
	ProjectID      string       `json:"projectId"`
	Deadline       time.Time    `json:"deadline"`
	CompletionDate *time.Time   `json:"completionDate,omitempty"`
	RelatedDocs    []RelatedDoc `json:"relatedDocs"`
	CreatedBy      string       `json:"createdBy"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type Meeting struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Time          time.Time `json:"time"`
	Duration      int       `json:"duration"`
	Location      string    `json:"location"`
	Host          string    `json:"host"`
	JoinedMembers []string  `json:"joinedMembers"`
	Agenda        []string  `json:"agenda"`
	HasDocument   bool      `json:"hasDocument"`
	HasRecording  bool      `json:"hasRecording"`
	DocumentURL   string    `json:"documentUrl,omitempty"`
	RecordingURL  string    `json:"recordingUrl,omitempty"`
	ProjectID     string    `json:"projectId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Action is an immutable ledger entry. Seq is assigned by the store and
// orders entries permanently.
type Action struct {
	ID          string         `json:"id"`
	Seq         int64          `json:"seq"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	User        string         `json:"user"`
	ProjectID   string         `json:"projectId,omitempty"`
	TaskID      string         `json:"taskId,omitempty"`
	MeetingID   string         `json:"meetingId,omitempty"`
	Priority    string         `json:"priority"`
	Department  string         `json:"department"`
	HasDocument bool           `json:"hasDocument"`
	HasMeeting  bool           `json:"hasMeeting"`
	HasGitHub   bool           `json:"hasGitHub"`
	Members     []string       `json:"members"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Initials returns the upper-cased first letter of each word in name.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// Contains reports whether v is in set.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// AddUnique appends v to set unless already present.
func AddUnique(set []string, v string) ([]string, bool) {
	if Contains(set, v) {
		return set, false
	}
	return append(set, v), true
}

// Remove drops every occurrence of v from set.
func Remove(set []string, v string) ([]string, bool) {
	out := make([]string, 0, len(set))
	removed := false
	for _, s := range set {
		if s == v {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
