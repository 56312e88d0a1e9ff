package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"connex/internal/audit"
	"connex/internal/config"
	"connex/internal/db"
	"connex/internal/domain"
	"connex/internal/engine"
	"connex/internal/migrate"
	"connex/internal/query"
	"connex/internal/repo"
	connexsdk "connex/sdk/go"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	Repo   repo.Repo
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	cfg := config.Default()
	cfg.Audit.Async = false
	conn, dialect, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn, dialect); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := repo.New(conn, dialect)
	logger := log.New(io.Discard, "", 0)
	rec := audit.New(r, cfg, logger)
	e := engine.New(r, rec, cfg)
	e.Logger = logger
	handler, err := New(Config{
		Engine:   e,
		Query:    query.New(r, cfg),
		Users:    r,
		Recorder: rec,
		BasePath: "/api",
		Auth: AuthConfig{
			JWTSecret:              testSecret,
			AllowLegacyActorHeader: true,
			Logger:                 logger,
			BcryptCost:             bcrypt.MinCost,
		},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Repo:   r,
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			rec.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func register(t *testing.T, srv *testServer, name, email string) AuthResponse {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	var out AuthResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal auth: %v", err)
	}
	return out
}

type envelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, data []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, string(data))
	}
	return env
}

func TestRegisterLoginAndProfile(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	reg := register(t, srv, "Ada Lovelace", "Ada@Example.com")
	if reg.User.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %s", reg.User.Email)
	}
	if reg.User.Avatar != "AL" {
		t.Fatalf("expected initials avatar, got %q", reg.User.Avatar)
	}

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "secret123",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}
	var login AuthResponse
	_ = json.Unmarshal(data, &login)

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/users/"+reg.User.ID, nil, bearer(login.Token))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get user status %d: %s", res.StatusCode, string(data))
	}
	if strings.Contains(strings.ToLower(string(data)), "password") {
		t.Fatalf("user payload leaked a password field: %s", string(data))
	}
}

func TestDuplicateEmailIsValidation(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	register(t, srv, "Ada Lovelace", "ada@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/register", map[string]any{
		"name":     "Ada Again",
		"email":    "ADA@example.com",
		"password": "secret123",
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", res.StatusCode, string(data))
	}
	env := decodeEnvelope(t, data)
	if env.Error.Code != "validation_failed" || env.Error.Details["field"] != "email" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}
}

func TestRequestsWithoutCredentialsAreRejected(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/api/projects", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/projects", nil, bearer("not-a-token"))
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should be public, got %d", res.StatusCode)
	}
}

func TestLegacyActorHeaderResolvesUser(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	reg := register(t, srv, "Ada Lovelace", "ada@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/projects", nil, map[string]string{"X-Actor-Id": reg.User.ID})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("legacy header status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/projects", nil, map[string]string{"X-Actor-Id": "ghost"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown legacy actor should be 401, got %d", res.StatusCode)
	}
}

func TestTaskCompletionUpdatesProjectProgress(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	reg := register(t, srv, "Ada Lovelace", "ada@example.com")
	auth := bearer(reg.Token)

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/projects", map[string]any{
		"name":    "Launch",
		"members": []string{reg.User.ID},
	}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var project query.ProjectView
	if err := json.Unmarshal(data, &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	if project.CreatedBy.Name != "Ada Lovelace" {
		t.Fatalf("expected expanded creator, got %+v", project.CreatedBy)
	}

	deadline := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	var pendingID string
	for i, status := range []string{domain.TaskCompleted, domain.TaskCompleted, domain.TaskPending, domain.TaskInProgress} {
		res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
			"title":      "task " + status,
			"status":     status,
			"projectId":  project.ID,
			"assignedTo": reg.User.ID,
			"deadline":   deadline,
		}, auth)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("create task %d status %d: %s", i, res.StatusCode, string(data))
		}
		var task query.TaskView
		_ = json.Unmarshal(data, &task)
		if task.Project.Name != "Launch" {
			t.Fatalf("expected expanded project on task, got %+v", task.Project)
		}
		if status == domain.TaskPending {
			pendingID = task.ID
		}
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/projects/"+project.ID, nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get project status %d: %s", res.StatusCode, string(data))
	}
	_ = json.Unmarshal(data, &project)
	if project.Progress != 50 {
		t.Fatalf("expected progress 50, got %d", project.Progress)
	}
	if len(project.Tasks) != 4 {
		t.Fatalf("expected 4 task refs, got %d", len(project.Tasks))
	}

	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/tasks/"+pendingID, map[string]any{
		"status": domain.TaskCompleted,
	}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("complete task status %d: %s", res.StatusCode, string(data))
	}
	var completed query.TaskView
	_ = json.Unmarshal(data, &completed)
	if completed.CompletionDate == nil {
		t.Fatalf("expected completionDate to be stamped")
	}

	_, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/projects/"+project.ID, nil, auth)
	_ = json.Unmarshal(data, &project)
	if project.Progress != 75 {
		t.Fatalf("expected progress 75, got %d", project.Progress)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/actions?type=task_completed&projectId="+project.ID, nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list actions status %d: %s", res.StatusCode, string(data))
	}
	var actions []query.ActionView
	if err := json.Unmarshal(data, &actions); err != nil {
		t.Fatalf("unmarshal actions: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected one task_completed action, got %d", len(actions))
	}
	if actions[0].Task == nil || actions[0].Task.ID != pendingID {
		t.Fatalf("action should reference the completed task, got %+v", actions[0].Task)
	}
	if actions[0].User.Name != "Ada Lovelace" {
		t.Fatalf("expected expanded actor, got %+v", actions[0].User)
	}
}

func TestErrorEnvelope(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	reg := register(t, srv, "Ada Lovelace", "ada@example.com")
	auth := bearer(reg.Token)

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title":      "Orphan",
		"projectId":  "missing-project",
		"assignedTo": reg.User.ID,
		"deadline":   time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}, auth)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", res.StatusCode, string(data))
	}
	env := decodeEnvelope(t, data)
	if env.Error.Code != "validation_failed" || env.Error.Details["field"] != "projectId" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/projects/missing-project", nil, auth)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", res.StatusCode, string(data))
	}
	if env := decodeEnvelope(t, data); env.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", env.Error.Code)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/meetings/status/someday", nil, auth)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown meeting view, got %d %s", res.StatusCode, string(data))
	}
}

func TestUpdatingAnotherUserIsForbidden(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	ada := register(t, srv, "Ada Lovelace", "ada@example.com")
	alan := register(t, srv, "Alan Turing", "alan@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/users/"+alan.User.ID, map[string]any{
		"bio": "not mine to edit",
	}, bearer(ada.Token))
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/users/"+ada.User.ID, map[string]any{
		"role": domain.RoleAdmin,
	}, bearer(ada.Token))
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("self promotion should be 403, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/users/"+ada.User.ID, map[string]any{
		"bio": "Analyst",
	}, bearer(ada.Token))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("self update status %d: %s", res.StatusCode, string(data))
	}
	var u domain.User
	_ = json.Unmarshal(data, &u)
	if u.Bio != "Analyst" {
		t.Fatalf("expected bio update, got %q", u.Bio)
	}
}

func TestSDKMeetingFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()

	c := connexsdk.New(srv.URL)
	me, err := c.Register(ctx, "Ada Lovelace", "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	project, err := c.CreateProject(ctx, "Launch", "", []string{me.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	m, err := c.CreateMeeting(ctx, "Kickoff", time.Now().Add(24*time.Hour), project.ID)
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if m.Type != domain.DefaultMeetingType || m.Host.ID != me.ID {
		t.Fatalf("unexpected meeting defaults: %+v", m)
	}
	for i := 0; i < 2; i++ {
		m, err = c.JoinMeeting(ctx, m.ID)
		if err != nil {
			t.Fatalf("join meeting: %v", err)
		}
	}
	if len(m.JoinedMembers) != 1 {
		t.Fatalf("expected one joined member, got %d", len(m.JoinedMembers))
	}
	upcoming, err := c.Meetings(ctx, "upcoming")
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != m.ID {
		t.Fatalf("expected the meeting in upcoming, got %+v", upcoming)
	}

	if _, err := c.RecordAction(ctx, domain.ActionCodeReview, "Reviewed launch plan", project.ID); err != nil {
		t.Fatalf("record action: %v", err)
	}
	timeline, err := c.Timeline(ctx, project.ID, "")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(timeline) < 2 || timeline[0].Type != domain.ActionCodeReview {
		t.Fatalf("expected code review first on the timeline, got %+v", timeline)
	}
}

type hookSink struct {
	mu      sync.Mutex
	types   []string
	headers []string
	seqs    []int64
}

func (s *hookSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var a domain.Action
	_ = json.NewDecoder(r.Body).Decode(&a)
	s.mu.Lock()
	s.types = append(s.types, a.Type)
	s.headers = append(s.headers, r.Header.Get("X-Connex-Action"))
	s.seqs = append(s.seqs, a.Seq)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *hookSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.types...)
}

func (s *hookSink) deliveries() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.seqs...)
}

func TestWebhookDeliversNewActions(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()

	actor, err := srv.Repo.SaveUser(ctx, domain.User{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Role:       domain.RoleManager,
		Department: domain.DepartmentEngineering,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := srv.Engine.CreateProject(ctx, engine.ProjectCommand{Name: engine.Ptr("Before")}, actor); err != nil {
		t.Fatalf("create project: %v", err)
	}

	all := &hookSink{}
	allSrv := httptest.NewServer(all)
	defer allSrv.Close()
	filtered := &hookSink{}
	filteredSrv := httptest.NewServer(filtered)
	defer filteredSrv.Close()
	disabled := false

	d := newWebhookDispatcher(srv.Repo, []config.WebhookConfig{
		{URL: allSrv.URL},
		{URL: filteredSrv.URL, Types: []string{domain.ActionCodeReview}},
		{URL: allSrv.URL, Enabled: &disabled},
	})
	d.dispatchAll(ctx)
	if got := all.received(); len(got) != 0 {
		t.Fatalf("existing actions must not be delivered, got %v", got)
	}

	if _, err := srv.Engine.CreateProject(ctx, engine.ProjectCommand{Name: engine.Ptr("After")}, actor); err != nil {
		t.Fatalf("create project: %v", err)
	}
	d.dispatchAll(ctx)
	if got := all.received(); len(got) != 1 || got[0] != domain.ActionProjectCreated {
		t.Fatalf("expected one project_created delivery, got %v", got)
	}
	if all.headers[0] != domain.ActionProjectCreated {
		t.Fatalf("expected action header, got %q", all.headers[0])
	}
	if got := filtered.received(); len(got) != 0 {
		t.Fatalf("filtered hook should skip project_created, got %v", got)
	}

	d.dispatchAll(ctx)
	if got := all.received(); len(got) != 1 {
		t.Fatalf("cursor should prevent redelivery, got %v", got)
	}
}

func TestWebhookBacklogFromEmptyLedgerIsDeliveredInOrder(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()

	sink := &hookSink{}
	sinkSrv := httptest.NewServer(sink)
	defer sinkSrv.Close()
	d := newWebhookDispatcher(srv.Repo, []config.WebhookConfig{{URL: sinkSrv.URL}})
	d.batch = 2
	d.dispatchAll(ctx)

	var want []int64
	for i := 0; i < 5; i++ {
		a, err := srv.Repo.AppendAction(ctx, domain.Action{
			Type:       domain.ActionCommentAdded,
			Title:      "comment",
			User:       "u1",
			Priority:   domain.PriorityMedium,
			Department: domain.DepartmentOther,
		})
		if err != nil {
			t.Fatalf("append action: %v", err)
		}
		want = append(want, a.Seq)
	}
	for i := 0; i < 3; i++ {
		d.dispatchAll(ctx)
	}
	got := sink.deliveries()
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery %d: got seq %d want %d", i, got[i], want[i])
		}
	}
}

func TestTaskNameIsAnAliasOfTitle(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	reg := register(t, srv, "Ada Lovelace", "ada@example.com")
	auth := bearer(reg.Token)

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/projects", map[string]any{"name": "Docs"}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var project query.ProjectView
	_ = json.Unmarshal(data, &project)
	deadline := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"name":       "Write docs",
		"projectId":  project.ID,
		"assignedTo": reg.User.ID,
		"deadline":   deadline,
	}, auth)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task by name status %d: %s", res.StatusCode, string(data))
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if body["title"] != "Write docs" || body["name"] != "Write docs" {
		t.Fatalf("expected title and name to match, got title=%v name=%v", body["title"], body["name"])
	}
	id, _ := body["id"].(string)

	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/tasks/"+id, map[string]any{
		"title": "Write the docs",
		"name":  "ignored",
	}, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update task status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/tasks/"+id, nil, auth)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get task status %d: %s", res.StatusCode, string(data))
	}
	body = nil
	_ = json.Unmarshal(data, &body)
	if body["title"] != "Write the docs" || body["name"] != "Write the docs" {
		t.Fatalf("expected title to win over name, got title=%v name=%v", body["title"], body["name"])
	}
}

func TestOpenAPIDocumentIsStableUnderConcurrentFirstRequests(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	const n = 8
	var wg sync.WaitGroup
	bodies := make([][]byte, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := srv.Client().Get(srv.URL + "/api/openapi.json")
			if err != nil {
				errs[i] = err
				return
			}
			defer res.Body.Close()
			bodies[i], errs[i] = io.ReadAll(res.Body)
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if len(bodies[i]) == 0 || !bytes.Equal(bodies[i], bodies[0]) {
			t.Fatalf("request %d returned a different document", i)
		}
	}
}
