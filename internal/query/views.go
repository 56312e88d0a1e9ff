package query

import "connex/internal/domain"

// Reference summaries are the only shapes a reference expands to.

type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type TaskSummary struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type MeetingSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// The views below embed the stored entity and shadow its reference fields
// with summaries under the same JSON names.

type ActionView struct {
	domain.Action
	User    UserSummary     `json:"user"`
	Project *ProjectSummary `json:"projectId,omitempty"`
	Task    *TaskSummary    `json:"taskId,omitempty"`
	Meeting *MeetingSummary `json:"meetingId,omitempty"`
	Members []UserSummary   `json:"members"`
}

type TaskView struct {
	domain.Task
	AssignedTo UserSummary    `json:"assignedTo"`
	Project    ProjectSummary `json:"projectId"`
	CreatedBy  UserSummary    `json:"createdBy"`
}

type MeetingView struct {
	domain.Meeting
	Host          UserSummary     `json:"host"`
	JoinedMembers []UserSummary   `json:"joinedMembers"`
	Project       *ProjectSummary `json:"projectId,omitempty"`
}

type ProjectView struct {
	domain.Project
	Members   []UserSummary `json:"members"`
	Tasks     []TaskSummary `json:"tasks"`
	CreatedBy UserSummary   `json:"createdBy"`
}

func summarizeUser(u domain.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// refs memoizes lookups while one response is expanded. Dangling ids expand
// to a summary carrying only the id.
type refs struct {
	users    map[string]domain.User
	projects map[string]ProjectSummary
	tasks    map[string]TaskSummary
	meetings map[string]MeetingSummary
}

func newRefs(users map[string]domain.User) *refs {
	if users == nil {
		users = map[string]domain.User{}
	}
	return &refs{
		users:    users,
		projects: map[string]ProjectSummary{},
		tasks:    map[string]TaskSummary{},
		meetings: map[string]MeetingSummary{},
	}
}

func (r *refs) user(id string) UserSummary {
	if u, ok := r.users[id]; ok {
		return summarizeUser(u)
	}
	return UserSummary{ID: id}
}

func (r *refs) userList(ids []string) []UserSummary {
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.user(id))
	}
	return out
}
