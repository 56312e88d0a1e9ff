package query_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connex/internal/config"
	"connex/internal/db"
	"connex/internal/domain"
	"connex/internal/migrate"
	"connex/internal/query"
	"connex/internal/repo"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctx  context.Context
	repo repo.Repo
	svc  query.Service
	user domain.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn, dialect, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn, dialect))
	r := repo.New(conn, dialect)
	r.Now = func() time.Time { return testNow }

	cfg := config.Default()
	cfg.Query.TimelineLimit = 3
	svc := query.New(r, cfg)
	svc.Now = func() time.Time { return testNow }

	ctx := context.Background()
	u, err := r.SaveUser(ctx, domain.User{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleAdmin,
		Department:   domain.DepartmentEngineering,
	})
	require.NoError(t, err)
	return fixture{ctx: ctx, repo: r, svc: svc, user: u}
}

func (f fixture) meeting(t *testing.T, name, status string, at time.Time) domain.Meeting {
	t.Helper()
	m, err := f.repo.SaveMeeting(f.ctx, domain.Meeting{
		Name:          name,
		Type:          domain.DefaultMeetingType,
		Status:        status,
		Time:          at,
		Duration:      30,
		Location:      domain.DefaultMeetingLocation,
		Host:          f.user.ID,
		JoinedMembers: []string{f.user.ID},
	})
	require.NoError(t, err)
	return m
}

func names(views []query.MeetingView) []string {
	out := []string{}
	for _, v := range views {
		out = append(out, v.Name)
	}
	return out
}

func TestMeetingViewsAreDisjoint(t *testing.T) {
	f := newFixture(t)
	f.meeting(t, "live", domain.MeetingInProgress, testNow.Add(-time.Hour))
	f.meeting(t, "early", domain.MeetingInProgress, testNow.Add(time.Hour))
	f.meeting(t, "next", domain.MeetingScheduled, testNow.Add(2*time.Hour))
	f.meeting(t, "soon", domain.MeetingScheduled, testNow.Add(time.Hour))
	f.meeting(t, "missed", domain.MeetingScheduled, testNow.Add(-time.Hour))
	f.meeting(t, "old", domain.MeetingCompleted, testNow.Add(-48*time.Hour))
	f.meeting(t, "older", domain.MeetingCompleted, testNow.Add(-72*time.Hour))

	ongoing, err := f.svc.Ongoing(f.ctx)
	require.NoError(t, err)
	upcoming, err := f.svc.Upcoming(f.ctx)
	require.NoError(t, err)
	history, err := f.svc.History(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"live"}, names(ongoing))
	assert.Equal(t, []string{"soon", "next"}, names(upcoming))
	assert.Equal(t, []string{"old", "older"}, names(history))

	seen := map[string]bool{}
	for _, v := range append(append(ongoing, upcoming...), history...) {
		assert.False(t, seen[v.ID], "meeting %s in two views", v.Name)
		seen[v.ID] = true
	}
	require.NotEmpty(t, ongoing)
	assert.Equal(t, "Ada Lovelace", ongoing[0].Host.Name)
	assert.Len(t, ongoing[0].JoinedMembers, 1)
}

func TestExpandedViewsNeverCarryPassword(t *testing.T) {
	f := newFixture(t)
	p, err := f.repo.SaveProject(f.ctx, domain.Project{
		Name: "Launch", Status: domain.ProjectPlanning, Priority: domain.PriorityHigh,
		Members: []string{f.user.ID}, StartDate: testNow, CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	_, err = f.repo.AppendAction(f.ctx, domain.Action{
		Type: domain.ActionProjectCreated, Title: `Project "Launch" was created`, User: f.user.ID,
		ProjectID: p.ID, Priority: domain.PriorityHigh, Department: domain.DepartmentEngineering,
		Members: []string{f.user.ID},
	})
	require.NoError(t, err)

	actions, err := f.svc.Actions(f.ctx, query.ActionQuery{Department: query.DepartmentAll})
	require.NoError(t, err)
	project, err := f.svc.Project(f.ctx, p.ID)
	require.NoError(t, err)
	members, err := f.svc.ProjectMembers(f.ctx, p.ID)
	require.NoError(t, err)
	user, err := f.svc.User(f.ctx, f.user.ID)
	require.NoError(t, err)

	for _, v := range []any{actions, project, members, user} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")
		assert.NotContains(t, string(raw), "$2a$10$secret")
	}

	require.Len(t, actions, 1)
	assert.Equal(t, "Launch", actions[0].Project.Name)
	assert.Equal(t, f.user.Email, actions[0].User.Email)
	assert.Equal(t, "AL", actions[0].User.Avatar)
}

func TestActionViewShadowsReferenceFields(t *testing.T) {
	f := newFixture(t)
	a, err := f.repo.AppendAction(f.ctx, domain.Action{
		Type: domain.ActionCommentAdded, Title: "note", User: f.user.ID, TaskID: "gone",
		Priority: domain.PriorityLow, Department: domain.DepartmentOther,
	})
	require.NoError(t, err)

	v, err := f.svc.Action(f.ctx, a.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, map[string]any{"id": "gone"}, decoded["taskId"])
	user, ok := decoded["user"].(map[string]any)
	require.True(t, ok, "user should expand to an object")
	assert.Equal(t, f.user.ID, user["id"])
	assert.NotContains(t, decoded, "projectId")
}

func TestTimelineLimitAndDepartment(t *testing.T) {
	f := newFixture(t)
	p, err := f.repo.SaveProject(f.ctx, domain.Project{
		Name: "Alpha", Status: domain.ProjectInProgress, Priority: domain.PriorityMedium,
		StartDate: testNow, CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	for i, dep := range []string{domain.DepartmentDesign, domain.DepartmentDesign, domain.DepartmentEngineering, domain.DepartmentDesign, domain.DepartmentEngineering} {
		_, err := f.repo.AppendAction(f.ctx, domain.Action{
			Type: domain.ActionCodeReview, Title: fmt.Sprintf("review %d", i), User: f.user.ID,
			ProjectID: p.ID, Priority: domain.PriorityMedium, Department: dep,
		})
		require.NoError(t, err)
	}

	all, err := f.svc.Timeline(f.ctx, p.ID, query.DepartmentAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "review 4", all[0].Title)

	design, err := f.svc.Timeline(f.ctx, p.ID, domain.DepartmentDesign)
	require.NoError(t, err)
	require.Len(t, design, 3)
	for _, v := range design {
		assert.Equal(t, domain.DepartmentDesign, v.Department)
	}

	other, err := f.svc.Timeline(f.ctx, "other", "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTaskViewExpandsReferences(t *testing.T) {
	f := newFixture(t)
	p, err := f.repo.SaveProject(f.ctx, domain.Project{
		Name: "Alpha", Status: domain.ProjectInProgress, Priority: domain.PriorityMedium,
		StartDate: testNow, CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	task, err := f.repo.SaveTask(f.ctx, domain.Task{
		Title: "Write docs", Status: domain.TaskPending, Priority: domain.PriorityLow,
		Category: domain.DefaultCategory, AssignedTo: f.user.ID, ProjectID: p.ID,
		Deadline: testNow.Add(24 * time.Hour), CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	p.Tasks = []string{task.ID}
	p.Members = []string{f.user.ID}
	_, err = f.repo.SaveProject(f.ctx, p)
	require.NoError(t, err)

	v, err := f.svc.Task(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, query.ProjectSummary{ID: p.ID, Name: "Alpha"}, v.Project)
	assert.Equal(t, "Ada Lovelace", v.AssignedTo.Name)

	pv, err := f.svc.Project(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []query.TaskSummary{{ID: task.ID, Title: "Write docs"}}, pv.Tasks)
	assert.Equal(t, f.user.ID, pv.CreatedBy.ID)

	byUser, err := f.svc.Tasks(f.ctx, repo.TaskFilter{AssignedTo: f.user.ID})
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestMissingEntityIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Project(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Meeting(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Action(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
