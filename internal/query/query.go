package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"connex/internal/config"
	"connex/internal/domain"
	"connex/internal/repo"
)

// DepartmentAll disables the department filter of the timeline.
const DepartmentAll = "all"

type Store interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	FindUsers(ctx context.Context, f repo.UserFilter) ([]domain.User, error)
	UsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	FindProjects(ctx context.Context, f repo.ProjectFilter) ([]domain.Project, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	FindTasks(ctx context.Context, f repo.TaskFilter) ([]domain.Task, error)
	GetMeeting(ctx context.Context, id string) (domain.Meeting, error)
	FindMeetings(ctx context.Context, f repo.MeetingFilter) ([]domain.Meeting, error)
	GetAction(ctx context.Context, id string) (domain.Action, error)
	FindActions(ctx context.Context, f repo.ActionFilter) ([]domain.Action, error)
}

// Service answers read requests with expanded views. It never writes.
type Service struct {
	Store  Store
	Config *config.Config
	Now    func() time.Time
}

func New(store Store, cfg *config.Config) Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return Service{Store: store, Config: cfg, Now: time.Now}
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func capLimit(requested, max int) int {
	if requested <= 0 || (max > 0 && requested > max) {
		return max
	}
	return requested
}

func (s Service) listLimit(requested int) int {
	return capLimit(requested, s.Config.Query.ListLimit)
}

// ActionQuery filters the ledger. Department "all" or empty matches every
// department.
type ActionQuery struct {
	ProjectID  string
	UserID     string
	Type       string
	Department string
	Limit      int
}

func (s Service) Actions(ctx context.Context, q ActionQuery) ([]ActionView, error) {
	f := repo.ActionFilter{
		ProjectID: q.ProjectID,
		UserID:    q.UserID,
		Type:      q.Type,
		Limit:     s.listLimit(q.Limit),
	}
	if !strings.EqualFold(q.Department, DepartmentAll) {
		f.Department = q.Department
	}
	actions, err := s.Store.FindActions(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.expandActions(ctx, actions)
}

// Timeline is the newest actions of a project, capped at query.timeline_limit.
func (s Service) Timeline(ctx context.Context, projectID, department string) ([]ActionView, error) {
	f := repo.ActionFilter{ProjectID: projectID, Limit: s.Config.Query.TimelineLimit}
	if !strings.EqualFold(department, DepartmentAll) {
		f.Department = department
	}
	actions, err := s.Store.FindActions(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.expandActions(ctx, actions)
}

func (s Service) Action(ctx context.Context, id string) (ActionView, error) {
	a, err := s.Store.GetAction(ctx, id)
	if err != nil {
		return ActionView{}, err
	}
	views, err := s.expandActions(ctx, []domain.Action{a})
	if err != nil {
		return ActionView{}, err
	}
	return views[0], nil
}

func (s Service) expandActions(ctx context.Context, actions []domain.Action) ([]ActionView, error) {
	var ids []string
	for _, a := range actions {
		ids = append(ids, a.User)
		ids = append(ids, a.Members...)
	}
	users, err := s.Store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	r := newRefs(users)
	out := make([]ActionView, 0, len(actions))
	for _, a := range actions {
		v := ActionView{Action: a, User: r.user(a.User), Members: r.userList(a.Members)}
		if a.ProjectID != "" {
			p, err := s.project(ctx, r, a.ProjectID)
			if err != nil {
				return nil, err
			}
			v.Project = &p
		}
		if a.TaskID != "" {
			t, err := s.task(ctx, r, a.TaskID)
			if err != nil {
				return nil, err
			}
			v.Task = &t
		}
		if a.MeetingID != "" {
			m, err := s.meeting(ctx, r, a.MeetingID)
			if err != nil {
				return nil, err
			}
			v.Meeting = &m
		}
		out = append(out, v)
	}
	return out, nil
}

func (s Service) project(ctx context.Context, r *refs, id string) (ProjectSummary, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	sum := ProjectSummary{ID: id}
	p, err := s.Store.GetProject(ctx, id)
	switch {
	case err == nil:
		sum.Name = p.Name
	case !errors.Is(err, domain.ErrNotFound):
		return ProjectSummary{}, err
	}
	r.projects[id] = sum
	return sum, nil
}

func (s Service) task(ctx context.Context, r *refs, id string) (TaskSummary, error) {
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	sum := TaskSummary{ID: id}
	t, err := s.Store.GetTask(ctx, id)
	switch {
	case err == nil:
		sum.Title = t.Title
	case !errors.Is(err, domain.ErrNotFound):
		return TaskSummary{}, err
	}
	r.tasks[id] = sum
	return sum, nil
}

func (s Service) meeting(ctx context.Context, r *refs, id string) (MeetingSummary, error) {
	if m, ok := r.meetings[id]; ok {
		return m, nil
	}
	sum := MeetingSummary{ID: id}
	m, err := s.Store.GetMeeting(ctx, id)
	switch {
	case err == nil:
		sum.Name = m.Name
	case !errors.Is(err, domain.ErrNotFound):
		return MeetingSummary{}, err
	}
	r.meetings[id] = sum
	return sum, nil
}

func (s Service) Projects(ctx context.Context, f repo.ProjectFilter) ([]ProjectView, error) {
	f.Limit = s.listLimit(f.Limit)
	projects, err := s.Store.FindProjects(ctx, f)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.CreatedBy)
		ids = append(ids, p.Members...)
	}
	users, err := s.Store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	r := newRefs(users)
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		v, err := s.projectView(ctx, r, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s Service) Project(ctx context.Context, id string) (ProjectView, error) {
	p, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}
	users, err := s.Store.UsersByIDs(ctx, append([]string{p.CreatedBy}, p.Members...))
	if err != nil {
		return ProjectView{}, err
	}
	return s.projectView(ctx, newRefs(users), p)
}

func (s Service) projectView(ctx context.Context, r *refs, p domain.Project) (ProjectView, error) {
	tasks, err := s.Store.FindTasks(ctx, repo.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return ProjectView{}, err
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	v := ProjectView{
		Project:   p,
		Members:   r.userList(p.Members),
		Tasks:     make([]TaskSummary, 0, len(p.Tasks)),
		CreatedBy: r.user(p.CreatedBy),
	}
	for _, id := range p.Tasks {
		v.Tasks = append(v.Tasks, TaskSummary{ID: id, Title: titles[id]})
	}
	return v, nil
}

func (s Service) Tasks(ctx context.Context, f repo.TaskFilter) ([]TaskView, error) {
	f.Limit = s.listLimit(f.Limit)
	tasks, err := s.Store.FindTasks(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.expandTasks(ctx, tasks)
}

func (s Service) Task(ctx context.Context, id string) (TaskView, error) {
	t, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	views, err := s.expandTasks(ctx, []domain.Task{t})
	if err != nil {
		return TaskView{}, err
	}
	return views[0], nil
}

func (s Service) expandTasks(ctx context.Context, tasks []domain.Task) ([]TaskView, error) {
	var ids []string
	for _, t := range tasks {
		ids = append(ids, t.AssignedTo, t.CreatedBy)
	}
	users, err := s.Store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	r := newRefs(users)
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		p, err := s.project(ctx, r, t.ProjectID)
		if err != nil {
			return nil, err
		}
		out = append(out, TaskView{
			Task:       t,
			AssignedTo: r.user(t.AssignedTo),
			Project:    p,
			CreatedBy:  r.user(t.CreatedBy),
		})
	}
	return out, nil
}

func (s Service) Meetings(ctx context.Context, f repo.MeetingFilter) ([]MeetingView, error) {
	f.Limit = s.listLimit(f.Limit)
	return s.meetings(ctx, f)
}

// Ongoing lists meetings in progress whose scheduled time has passed.
func (s Service) Ongoing(ctx context.Context) ([]MeetingView, error) {
	now := s.now()
	return s.meetings(ctx, repo.MeetingFilter{
		Status:   domain.MeetingInProgress,
		NotAfter: &now,
		Sort:     repo.SortTimeDesc,
		Limit:    s.Config.Query.ListLimit,
	})
}

// Upcoming lists scheduled meetings from now on, soonest first.
func (s Service) Upcoming(ctx context.Context) ([]MeetingView, error) {
	now := s.now()
	return s.meetings(ctx, repo.MeetingFilter{
		Status:    domain.MeetingScheduled,
		NotBefore: &now,
		Sort:      repo.SortTimeAsc,
		Limit:     s.Config.Query.ListLimit,
	})
}

func (s Service) History(ctx context.Context) ([]MeetingView, error) {
	return s.meetings(ctx, repo.MeetingFilter{
		Status: domain.MeetingCompleted,
		Sort:   repo.SortTimeDesc,
		Limit:  s.Config.Query.HistoryLimit,
	})
}

func (s Service) Meeting(ctx context.Context, id string) (MeetingView, error) {
	m, err := s.Store.GetMeeting(ctx, id)
	if err != nil {
		return MeetingView{}, err
	}
	views, err := s.expandMeetings(ctx, []domain.Meeting{m})
	if err != nil {
		return MeetingView{}, err
	}
	return views[0], nil
}

func (s Service) meetings(ctx context.Context, f repo.MeetingFilter) ([]MeetingView, error) {
	meetings, err := s.Store.FindMeetings(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.expandMeetings(ctx, meetings)
}

func (s Service) expandMeetings(ctx context.Context, meetings []domain.Meeting) ([]MeetingView, error) {
	var ids []string
	for _, m := range meetings {
		ids = append(ids, m.Host)
		ids = append(ids, m.JoinedMembers...)
	}
	users, err := s.Store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	r := newRefs(users)
	out := make([]MeetingView, 0, len(meetings))
	for _, m := range meetings {
		v := MeetingView{Meeting: m, Host: r.user(m.Host), JoinedMembers: r.userList(m.JoinedMembers)}
		if m.ProjectID != "" {
			p, err := s.project(ctx, r, m.ProjectID)
			if err != nil {
				return nil, err
			}
			v.Project = &p
		}
		out = append(out, v)
	}
	return out, nil
}

func (s Service) Users(ctx context.Context, f repo.UserFilter) ([]domain.User, error) {
	f.Limit = s.listLimit(f.Limit)
	return s.Store.FindUsers(ctx, f)
}

func (s Service) User(ctx context.Context, id string) (domain.User, error) {
	return s.Store.GetUser(ctx, id)
}

// ProjectMembers returns the users in the project's member set, by name.
func (s Service) ProjectMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	p, err := s.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.Members) == 0 {
		return []domain.User{}, nil
	}
	return s.Store.FindUsers(ctx, repo.UserFilter{IDs: p.Members})
}
