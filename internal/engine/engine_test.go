package engine_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"connex/internal/audit"
	"connex/internal/config"
	"connex/internal/db"
	"connex/internal/domain"
	"connex/internal/engine"
	"connex/internal/migrate"
	"connex/internal/repo"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	Engine engine.Engine
	Repo   repo.Repo
	Ctx    context.Context
	Actor  domain.User
	Logs   *bytes.Buffer
}

type envOption func(*config.Config)

func newTestEnv(t *testing.T, opts ...envOption) testEnv {
	t.Helper()
	conn, dialect, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn, dialect); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	cfg.Audit.Async = false
	for _, opt := range opts {
		opt(cfg)
	}
	r := repo.New(conn, dialect)
	r.Now = func() time.Time { return testNow }
	logs := &bytes.Buffer{}
	logger := log.New(logs, "", 0)
	rec := audit.New(r, cfg, logger)
	eng := engine.New(r, rec, cfg)
	eng.Logger = logger
	eng.Now = func() time.Time { return testNow }

	ctx := context.Background()
	actor, err := r.SaveUser(ctx, domain.User{
		Name:       "Grace Hopper",
		Email:      "grace@example.com",
		Role:       domain.RoleManager,
		Department: domain.DepartmentEngineering,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return testEnv{Engine: eng, Repo: r, Ctx: ctx, Actor: actor, Logs: logs}
}

func (env testEnv) project(t *testing.T, name string) domain.Project {
	t.Helper()
	res, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCommand{Name: engine.Ptr(name)}, env.Actor)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return res.New
}

func (env testEnv) task(t *testing.T, projectID, status string) domain.Task {
	t.Helper()
	res, err := env.Engine.CreateTask(env.Ctx, engine.TaskCommand{
		Title:      engine.Ptr("task " + status),
		Status:     engine.Ptr(status),
		AssignedTo: engine.Ptr(env.Actor.ID),
		ProjectID:  engine.Ptr(projectID),
		Deadline:   engine.Ptr(testNow.Add(72 * time.Hour)),
	}, env.Actor)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return res.New
}

func (env testEnv) progress(t *testing.T, projectID string) int {
	t.Helper()
	p, err := env.Repo.GetProject(env.Ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	return p.Progress
}

func (env testEnv) actions(t *testing.T, f repo.ActionFilter) []domain.Action {
	t.Helper()
	out, err := env.Repo.FindActions(env.Ctx, f)
	if err != nil {
		t.Fatalf("find actions: %v", err)
	}
	return out
}

func TestProgressRounding(t *testing.T) {
	cases := []struct {
		in   map[string]int
		want int
	}{
		{nil, 0},
		{map[string]int{domain.TaskPending: 1}, 0},
		{map[string]int{domain.TaskCompleted: 1}, 100},
		{map[string]int{domain.TaskCompleted: 1, domain.TaskPending: 2}, 33},
		{map[string]int{domain.TaskCompleted: 2, domain.TaskPending: 1}, 67},
		{map[string]int{domain.TaskCompleted: 1, domain.TaskBlocked: 1}, 50},
		{map[string]int{domain.TaskCancelled: 3}, 0},
	}
	for _, tc := range cases {
		if got := engine.Progress(tc.in); got != tc.want {
			t.Fatalf("progress of %v: got %d want %d", tc.in, got, tc.want)
		}
	}
}

func TestMixedStatusesGiveHalfProgress(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	for _, s := range []string{domain.TaskCompleted, domain.TaskCompleted, domain.TaskPending, domain.TaskInProgress} {
		env.task(t, p.ID, s)
	}
	if got := env.progress(t, p.ID); got != 50 {
		t.Fatalf("expected progress 50, got %d", got)
	}
	stored, _ := env.Repo.GetProject(env.Ctx, p.ID)
	if len(stored.Tasks) != 4 {
		t.Fatalf("expected 4 task refs, got %v", stored.Tasks)
	}
}

func TestCompletingTaskRecordsOneAction(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	env.task(t, p.ID, domain.TaskCompleted)
	env.task(t, p.ID, domain.TaskCompleted)
	third := env.task(t, p.ID, domain.TaskPending)
	env.task(t, p.ID, domain.TaskCompleted)

	res, err := env.Engine.UpdateTask(env.Ctx, third.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if res.Outcome != engine.OutcomeUpdated || res.Old == nil || res.Old.Status != domain.TaskPending {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.New.CompletionDate == nil || !res.New.CompletionDate.Equal(testNow) {
		t.Fatalf("expected completion date stamped, got %v", res.New.CompletionDate)
	}
	if got := env.progress(t, p.ID); got != 75 {
		t.Fatalf("expected progress 75, got %d", got)
	}
	done := env.actions(t, repo.ActionFilter{Type: domain.ActionTaskCompleted})
	if len(done) != 1 {
		t.Fatalf("expected 1 task_completed, got %d", len(done))
	}
	a := done[0]
	if a.ProjectID != p.ID || a.TaskID != third.ID || a.User != env.Actor.ID {
		t.Fatalf("unexpected action refs %+v", a)
	}
	if a.Department != domain.DepartmentEngineering {
		t.Fatalf("expected actor department, got %s", a.Department)
	}
	if a.Title != `Task "task Pending" completed` {
		t.Fatalf("unexpected title %q", a.Title)
	}
}

func TestCreateProjectRecordsAction(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Launch")
	if p.Progress != 0 || p.Status != domain.ProjectPlanning || p.CreatedBy != env.Actor.ID {
		t.Fatalf("unexpected project %+v", p)
	}
	created := env.actions(t, repo.ActionFilter{Type: domain.ActionProjectCreated})
	if len(created) != 1 || created[0].ProjectID != p.ID {
		t.Fatalf("expected one project_created for %s, got %+v", p.ID, created)
	}
	if created[0].Title != `Project "Launch" was created` {
		t.Fatalf("unexpected title %q", created[0].Title)
	}
}

func TestCreateTaskRecordsAssignment(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	assigned := env.actions(t, repo.ActionFilter{Type: domain.ActionTaskAssigned, TaskID: task.ID})
	if len(assigned) != 1 {
		t.Fatalf("expected 1 task_assigned, got %d", len(assigned))
	}
	if assigned[0].Title != `Task "task Pending" assigned to Grace Hopper` {
		t.Fatalf("unexpected title %q", assigned[0].Title)
	}
	if len(assigned[0].Members) != 1 || assigned[0].Members[0] != env.Actor.ID {
		t.Fatalf("expected assignee as members, got %v", assigned[0].Members)
	}
}

func TestRepeatedCompletionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	complete := engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}
	if _, err := env.Engine.UpdateTask(env.Ctx, task.ID, complete, env.Actor); err != nil {
		t.Fatal(err)
	}
	res, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{
		Status:      engine.Ptr(domain.TaskCompleted),
		Description: engine.Ptr("edited"),
	}, env.Actor)
	if err != nil {
		t.Fatal(err)
	}
	if res.New.CompletionDate == nil {
		t.Fatalf("completion date lost on Completed -> Completed")
	}
	if n := len(env.actions(t, repo.ActionFilter{Type: domain.ActionTaskCompleted})); n != 1 {
		t.Fatalf("expected 1 task_completed, got %d", n)
	}
	if got := env.progress(t, p.ID); got != 100 {
		t.Fatalf("expected progress 100, got %d", got)
	}
}

func TestReopenClearsCompletionAndRecompletionRecordsAgain(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	for _, status := range []string{domain.TaskCompleted, domain.TaskInProgress, domain.TaskCompleted} {
		res, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(status)}, env.Actor)
		if err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
		if status == domain.TaskInProgress && res.New.CompletionDate != nil {
			t.Fatalf("completion date kept after reopen")
		}
	}
	if n := len(env.actions(t, repo.ActionFilter{Type: domain.ActionTaskCompleted})); n != 2 {
		t.Fatalf("expected 2 task_completed under always, got %d", n)
	}
}

func TestFirstOnlySuppressesRecompletion(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Audit.Recompletion = config.RecompletionFirstOnly })
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	for _, status := range []string{domain.TaskCompleted, domain.TaskInProgress, domain.TaskCompleted} {
		if _, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(status)}, env.Actor); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	if n := len(env.actions(t, repo.ActionFilter{Type: domain.ActionTaskCompleted})); n != 1 {
		t.Fatalf("expected 1 task_completed under first_only, got %d", n)
	}
}

func TestDeletingLastTaskResetsProgress(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskCompleted)
	if got := env.progress(t, p.ID); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	res, err := env.Engine.DeleteTask(env.Ctx, task.ID, env.Actor)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Outcome != engine.OutcomeDeleted || res.Old == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, _ := env.Repo.GetProject(env.Ctx, p.ID)
	if stored.Progress != 0 || len(stored.Tasks) != 0 {
		t.Fatalf("expected reset project, got progress %d tasks %v", stored.Progress, stored.Tasks)
	}
}

func TestMovingTaskRecalculatesBothProjects(t *testing.T) {
	env := newTestEnv(t)
	a := env.project(t, "A")
	b := env.project(t, "B")
	task := env.task(t, a.ID, domain.TaskCompleted)
	env.task(t, b.ID, domain.TaskPending)

	if _, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{ProjectID: engine.Ptr(b.ID)}, env.Actor); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := env.progress(t, a.ID); got != 0 {
		t.Fatalf("expected source progress 0, got %d", got)
	}
	if got := env.progress(t, b.ID); got != 50 {
		t.Fatalf("expected target progress 50, got %d", got)
	}
}

func TestConcurrentCompletionSettlesAtHundred(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	var tasks []domain.Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, env.task(t, p.ID, domain.TaskInProgress))
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(tasks))
	for _, task := range tasks {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := env.Engine.UpdateTask(env.Ctx, id, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor)
			errs <- err
		}(task.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if got := env.progress(t, p.ID); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

// slowReads widens the window between reading a task and saving it.
type slowReads struct {
	repo.Repo
}

func (s slowReads) GetTask(ctx context.Context, id string) (domain.Task, error) {
	t, err := s.Repo.GetTask(ctx, id)
	time.Sleep(20 * time.Millisecond)
	return t, err
}

func TestConcurrentUpdatesCompleteATaskOnce(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	env.Engine.Store = slowReads{env.Repo}

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if got := env.actions(t, repo.ActionFilter{Type: domain.ActionTaskCompleted, TaskID: task.ID}); len(got) != 1 {
		t.Fatalf("expected 1 task_completed, got %d", len(got))
	}
}

func TestEngineLiteralUsesSharedLocks(t *testing.T) {
	env := newTestEnv(t)
	eng := engine.Engine{Store: env.Repo, Recorder: env.Engine.Recorder, Config: env.Engine.Config}
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	if _, err := eng.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := eng.RecalculateProgress(env.Ctx, p.ID); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got := env.progress(t, p.ID); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestProjectUpdateCannotOverrideProgress(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	env.task(t, p.ID, domain.TaskCompleted)
	res, err := env.Engine.UpdateProject(env.Ctx, p.ID, engine.ProjectCommand{Description: engine.Ptr("new scope")}, env.Actor)
	if err != nil {
		t.Fatal(err)
	}
	if res.New.Progress != 100 || res.New.Description != "new scope" {
		t.Fatalf("unexpected project %+v", res.New)
	}
	if res.Old == nil || res.Old.Description != "" {
		t.Fatalf("expected old snapshot, got %+v", res.Old)
	}
}

func TestProjectMembersUseSetSemantics(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	for i := 0; i < 2; i++ {
		if _, err := env.Engine.AddProjectMember(env.Ctx, p.ID, env.Actor.ID, env.Actor); err != nil {
			t.Fatal(err)
		}
	}
	stored, _ := env.Repo.GetProject(env.Ctx, p.ID)
	if len(stored.Members) != 1 {
		t.Fatalf("expected one member, got %v", stored.Members)
	}
	if _, err := env.Engine.AddProjectMember(env.Ctx, p.ID, "ghost", env.Actor); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown user, got %v", err)
	}
	res, err := env.Engine.RemoveProjectMember(env.Ctx, p.ID, env.Actor.ID, env.Actor)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.New.Members) != 0 {
		t.Fatalf("expected no members, got %v", res.New.Members)
	}
}

func TestJoinMeetingIsASet(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.CreateMeeting(env.Ctx, engine.MeetingCommand{
		Name: engine.Ptr("Standup"),
		Time: engine.Ptr(testNow.Add(time.Hour)),
	}, env.Actor)
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	m := res.New
	if m.Host != env.Actor.ID || m.Duration != 60 || m.Location != domain.DefaultMeetingLocation || m.Type != domain.DefaultMeetingType {
		t.Fatalf("unexpected defaults %+v", m)
	}
	for i := 0; i < 3; i++ {
		if _, err := env.Engine.JoinMeeting(env.Ctx, m.ID, env.Actor); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	got, _ := env.Repo.GetMeeting(env.Ctx, m.ID)
	if len(got.JoinedMembers) != 1 || got.JoinedMembers[0] != env.Actor.ID {
		t.Fatalf("expected single joined member, got %v", got.JoinedMembers)
	}
}

func TestCompletingMeetingRecordsAction(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.CreateMeeting(env.Ctx, engine.MeetingCommand{
		Name: engine.Ptr("Retro"),
		Time: engine.Ptr(testNow),
	}, env.Actor)
	if err != nil {
		t.Fatal(err)
	}
	id := res.New.ID
	if _, err := env.Engine.JoinMeeting(env.Ctx, id, env.Actor); err != nil {
		t.Fatal(err)
	}
	for _, status := range []string{domain.MeetingInProgress, domain.MeetingCompleted, domain.MeetingCompleted} {
		if _, err := env.Engine.UpdateMeeting(env.Ctx, id, engine.MeetingCommand{Status: engine.Ptr(status)}, env.Actor); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	done := env.actions(t, repo.ActionFilter{Type: domain.ActionMeetingCompleted})
	if len(done) != 1 || done[0].MeetingID != id || !done[0].HasMeeting {
		t.Fatalf("expected one meeting_completed, got %+v", done)
	}
	if len(done[0].Members) != 1 {
		t.Fatalf("expected joined members snapshot, got %v", done[0].Members)
	}
}

func TestValidationFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)

	res, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr("Done")}, env.Actor)
	if !errors.Is(err, domain.ErrValidation) || res.Outcome != engine.OutcomeValidationError {
		t.Fatalf("expected validation error, got %v (%s)", err, res.Outcome)
	}
	if domain.FieldOf(err) != "status" {
		t.Fatalf("expected status field, got %q", domain.FieldOf(err))
	}
	got, _ := env.Repo.GetTask(env.Ctx, task.ID)
	if got.Status != domain.TaskPending || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("task changed after failed validation: %+v", got)
	}

	_, err = env.Engine.CreateTask(env.Ctx, engine.TaskCommand{
		Title:      engine.Ptr("orphan"),
		AssignedTo: engine.Ptr(env.Actor.ID),
		ProjectID:  engine.Ptr("missing"),
		Deadline:   engine.Ptr(testNow),
	}, env.Actor)
	if !errors.Is(err, domain.ErrValidation) || domain.FieldOf(err) != "projectId" {
		t.Fatalf("expected projectId validation error, got %v", err)
	}
	tasks, _ := env.Repo.FindTasks(env.Ctx, repo.TaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}

	_, err = env.Engine.CreateProject(env.Ctx, engine.ProjectCommand{Name: engine.Ptr("Broke"), Budget: engine.Ptr(-1.0)}, env.Actor)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected budget validation error, got %v", err)
	}
}

func TestMissingTargetIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.UpdateTask(env.Ctx, "nope", engine.TaskCommand{Title: engine.Ptr("x")}, env.Actor)
	if !errors.Is(err, domain.ErrNotFound) || res.Outcome != engine.OutcomeNotFound {
		t.Fatalf("expected not found, got %v (%s)", err, res.Outcome)
	}
	if _, err := env.Engine.JoinMeeting(env.Ctx, "nope", env.Actor); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on join, got %v", err)
	}
	if _, err := env.Engine.UpdateProject(env.Ctx, "nope", engine.ProjectCommand{}, env.Actor); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on project, got %v", err)
	}
}

func TestMissingActorIsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCommand{Name: engine.Ptr("x")}, domain.User{})
	if !errors.Is(err, domain.ErrValidation) || domain.FieldOf(err) != "actor" {
		t.Fatalf("expected actor validation error, got %v", err)
	}
}

type failingActions struct {
	repo.Repo
}

func (failingActions) AppendAction(context.Context, domain.Action) (domain.Action, error) {
	return domain.Action{}, domain.Persistence("append action", errors.New("disk full"))
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t)
	logs := &bytes.Buffer{}
	env.Engine.Recorder = audit.New(failingActions{env.Repo}, env.Engine.Config, log.New(logs, "", 0))

	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	res, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor)
	if err != nil || res.Outcome != engine.OutcomeUpdated {
		t.Fatalf("mutation failed with audit error: %v", err)
	}
	if got := env.progress(t, p.ID); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if !strings.Contains(logs.String(), "audit:") {
		t.Fatalf("expected audit failure to be logged, got %q", logs.String())
	}
}

func TestStrictTransitions(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Workflow.StrictTransitions = true
		c.Workflow.AllowReopen = false
	})
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)

	_, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskCompleted)}, env.Actor)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected Pending -> Completed to be rejected, got %v", err)
	}
	for _, status := range []string{domain.TaskInProgress, domain.TaskCompleted} {
		if _, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(status)}, env.Actor); err != nil {
			t.Fatalf("to %s: %v", status, err)
		}
	}
	_, err = env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{Status: engine.Ptr(domain.TaskPending)}, env.Actor)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected reopen to be rejected, got %v", err)
	}
}

func TestReassignmentPolicy(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Audit.RecordReassignment = true })
	other, err := env.Repo.SaveUser(env.Ctx, domain.User{Name: "Alan Turing", Email: "alan@example.com", Role: domain.RoleMember, Department: domain.DepartmentProduct})
	if err != nil {
		t.Fatal(err)
	}
	p := env.project(t, "Alpha")
	task := env.task(t, p.ID, domain.TaskPending)
	if _, err := env.Engine.UpdateTask(env.Ctx, task.ID, engine.TaskCommand{AssignedTo: engine.Ptr(other.ID)}, env.Actor); err != nil {
		t.Fatal(err)
	}
	assigned := env.actions(t, repo.ActionFilter{Type: domain.ActionTaskAssigned, TaskID: task.ID})
	if len(assigned) != 2 {
		t.Fatalf("expected 2 task_assigned, got %d", len(assigned))
	}
	if assigned[0].Title != `Task "task Pending" assigned to Alan Turing` {
		t.Fatalf("unexpected newest title %q", assigned[0].Title)
	}
}
