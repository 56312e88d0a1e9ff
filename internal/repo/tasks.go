package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"connex/internal/domain"
)

const taskColumns = `id,title,description,status,priority,category,assigned_to,project_id,deadline,completion_date,related_docs_json,created_by,created_at,updated_at`

type TaskFilter struct {
	ProjectID  string
	AssignedTo string
	Status     string
	Limit      int
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		t                          domain.Task
		docs                       string
		deadline, created, updated int64
		completed                  sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Category, &t.AssignedTo, &t.ProjectID, &deadline, &completed, &docs, &t.CreatedBy, &created, &updated); err != nil {
		return t, err
	}
	t.Name = t.Title
	t.RelatedDocs = []domain.RelatedDoc{}
	if docs != "" {
		if err := json.Unmarshal([]byte(docs), &t.RelatedDocs); err != nil {
			return t, err
		}
	}
	t.Deadline = fromMillis(deadline)
	t.CompletionDate = timePtr(completed)
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func (r Repo) SaveTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	r.stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	t.Name = t.Title
	if t.RelatedDocs == nil {
		t.RelatedDocs = []domain.RelatedDoc{}
	}
	docs, err := marshalJSON(t.RelatedDocs)
	if err != nil {
		return domain.Task{}, domain.Persistence("encode related docs", err)
	}
	_, err = r.exec(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET title=excluded.title,description=excluded.description,status=excluded.status,priority=excluded.priority,
category=excluded.category,assigned_to=excluded.assigned_to,project_id=excluded.project_id,deadline=excluded.deadline,
completion_date=excluded.completion_date,related_docs_json=excluded.related_docs_json,created_by=excluded.created_by,updated_at=excluded.updated_at`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.Category, t.AssignedTo, t.ProjectID, toMillis(t.Deadline),
		nullableMillis(t.CompletionDate), docs, t.CreatedBy, toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
	if err != nil {
		return domain.Task{}, domain.Persistence("save task", err)
	}
	return t, nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	t, err := scanTask(r.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return t, domain.NotFound(domain.KindTask, id)
	}
	if err != nil {
		return t, domain.Persistence("get task", err)
	}
	return t, nil
}

// FindTasks returns matching tasks newest first.
func (r Repo) FindTasks(ctx context.Context, f TaskFilter) ([]domain.Task, error) {
	var w where
	w.eq("project_id", f.ProjectID)
	w.eq("assigned_to", f.AssignedTo)
	w.eq("status", f.Status)
	rows, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks`+w.sql()+` ORDER BY created_at DESC, id DESC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, domain.Persistence("find tasks", err)
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, domain.Persistence("scan task", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("find tasks", err)
	}
	return res, nil
}

// CountTasksByStatus returns per-status task counts for a project.
func (r Repo) CountTasksByStatus(ctx context.Context, projectID string) (map[string]int, error) {
	rows, err := r.query(ctx, `SELECT status, COUNT(*) FROM tasks WHERE project_id=? GROUP BY status`, projectID)
	if err != nil {
		return nil, domain.Persistence("count tasks", err)
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.Persistence("count tasks", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("count tasks", err)
	}
	return counts, nil
}

func (r Repo) DeleteTask(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "tasks", domain.KindTask, id)
}
