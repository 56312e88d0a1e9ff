package connexsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal connex HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/api",
		Timeout:  10 * time.Second,
	}
}

// Ref is an expanded reference as returned by the API.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Email string `json:"email,omitempty"`
}

// User represents the API user model (partial).
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Avatar     string `json:"avatar"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Progress    int    `json:"progress"`
	Members     []Ref  `json:"members"`
	Tasks       []Ref  `json:"tasks"`
	CreatedBy   Ref    `json:"createdBy"`
}

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     Ref        `json:"assignedTo"`
	Project        Ref        `json:"projectId"`
	Deadline       time.Time  `json:"deadline"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
}

type Meeting struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Time          time.Time `json:"time"`
	Host          Ref       `json:"host"`
	JoinedMembers []Ref     `json:"joinedMembers"`
}

// Action is a ledger entry.
type Action struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	User       Ref       `json:"user"`
	Project    *Ref      `json:"projectId,omitempty"`
	Task       *Ref      `json:"taskId,omitempty"`
	Meeting    *Ref      `json:"meetingId,omitempty"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Register creates an account and keeps the returned token on the client.
func (c *Client) Register(ctx context.Context, name, email, password string) (User, error) {
	body := map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	}
	return c.authenticate(ctx, "auth/register", body)
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	return c.authenticate(ctx, "auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, endpoint string, body any) (User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return User{}, err
	}
	c.BearerToken = resp.Token
	return resp.User, nil
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, name, description string, members []string) (Project, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
	}
	if members != nil {
		body["members"] = members
	}
	var resp Project
	err := c.do(ctx, http.MethodPost, "projects", body, &resp)
	return resp, err
}

func (c *Client) GetProject(ctx context.Context, id string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, "projects/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// CreateTask creates a task in projectID assigned to assignee.
func (c *Client) CreateTask(ctx context.Context, projectID, title, assignee string, deadline time.Time) (Task, error) {
	body := map[string]any{
		"title":      title,
		"projectId":  projectID,
		"assignedTo": assignee,
		"deadline":   deadline.UTC().Format(time.RFC3339),
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

// SetTaskStatus moves a task to status.
func (c *Client) SetTaskStatus(ctx context.Context, id, status string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPut, "tasks/"+url.PathEscape(id), map[string]any{"status": status}, &resp)
	return resp, err
}

// ProjectTasks lists the tasks of a project.
func (c *Client) ProjectTasks(ctx context.Context, projectID string) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, "tasks/project/"+url.PathEscape(projectID), nil, &resp)
	return resp, err
}

// CreateMeeting schedules a meeting at t.
func (c *Client) CreateMeeting(ctx context.Context, name string, t time.Time, projectID string) (Meeting, error) {
	body := map[string]any{
		"name": name,
		"time": t.UTC().Format(time.RFC3339),
	}
	if projectID != "" {
		body["projectId"] = projectID
	}
	var resp Meeting
	err := c.do(ctx, http.MethodPost, "meetings", body, &resp)
	return resp, err
}

// JoinMeeting adds the caller to the meeting's joined members.
func (c *Client) JoinMeeting(ctx context.Context, id string) (Meeting, error) {
	var resp Meeting
	err := c.do(ctx, http.MethodPost, "meetings/"+url.PathEscape(id)+"/join", nil, &resp)
	return resp, err
}

// Meetings returns the ongoing, upcoming or history view.
func (c *Client) Meetings(ctx context.Context, view string) ([]Meeting, error) {
	var resp []Meeting
	err := c.do(ctx, http.MethodGet, "meetings/status/"+url.PathEscape(view), nil, &resp)
	return resp, err
}

// Timeline returns the recent actions of a project. An empty department
// means all departments.
func (c *Client) Timeline(ctx context.Context, projectID, department string) ([]Action, error) {
	q := url.Values{}
	q.Set("projectId", projectID)
	if department != "" {
		q.Set("department", department)
	}
	var resp []Action
	err := c.do(ctx, http.MethodGet, "actions/recent/timeline?"+q.Encode(), nil, &resp)
	return resp, err
}

// RecordAction records a manual ledger entry such as a code review.
func (c *Client) RecordAction(ctx context.Context, actionType, title, projectID string) (Action, error) {
	body := map[string]any{
		"type":  actionType,
		"title": title,
	}
	if projectID != "" {
		body["projectId"] = projectID
	}
	var resp Action
	err := c.do(ctx, http.MethodPost, "actions", body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
