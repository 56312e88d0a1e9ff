package repo

import (
	"context"
	"database/sql"

	"connex/internal/domain"
)

const projectColumns = `id,name,description,status,priority,members_json,tasks_json,start_date,end_date,due_date,budget,progress,created_by,created_at,updated_at`

type ProjectFilter struct {
	Member string
	Status string
	Limit  int
}

func scanProject(row rowScanner) (domain.Project, error) {
	var (
		p                       domain.Project
		members, tasks          string
		start, created, updated int64
		end, due                sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Priority, &members, &tasks, &start, &end, &due, &p.Budget, &p.Progress, &p.CreatedBy, &created, &updated); err != nil {
		return p, err
	}
	var err error
	if p.Members, err = unmarshalStrings(members); err != nil {
		return p, err
	}
	if p.Tasks, err = unmarshalStrings(tasks); err != nil {
		return p, err
	}
	p.StartDate = fromMillis(start)
	p.EndDate = timePtr(end)
	p.DueDate = timePtr(due)
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func (r Repo) SaveProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	r.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if p.StartDate.IsZero() {
		p.StartDate = p.CreatedAt
	}
	if p.Members == nil {
		p.Members = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []string{}
	}
	_, err := r.exec(ctx, `INSERT INTO projects(`+projectColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name,description=excluded.description,status=excluded.status,priority=excluded.priority,
members_json=excluded.members_json,tasks_json=excluded.tasks_json,start_date=excluded.start_date,end_date=excluded.end_date,
due_date=excluded.due_date,budget=excluded.budget,progress=excluded.progress,created_by=excluded.created_by,updated_at=excluded.updated_at`,
		p.ID, p.Name, p.Description, p.Status, p.Priority, marshalStrings(p.Members), marshalStrings(p.Tasks),
		toMillis(p.StartDate), nullableMillis(p.EndDate), nullableMillis(p.DueDate), p.Budget, p.Progress, p.CreatedBy,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return domain.Project{}, domain.Persistence("save project", err)
	}
	return p, nil
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(r.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return p, domain.NotFound(domain.KindProject, id)
	}
	if err != nil {
		return p, domain.Persistence("get project", err)
	}
	return p, nil
}

func (r Repo) FindProjects(ctx context.Context, f ProjectFilter) ([]domain.Project, error) {
	var w where
	w.eq("status", f.Status)
	w.containsJSON("members_json", f.Member)
	rows, err := r.query(ctx, `SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY created_at DESC, id DESC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, domain.Persistence("find projects", err)
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, domain.Persistence("scan project", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("find projects", err)
	}
	return res, nil
}

func (r Repo) DeleteProject(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "projects", domain.KindProject, id)
}
