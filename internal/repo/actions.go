package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"connex/internal/domain"
)

const actionColumns = `seq,id,type,title,description,user_id,project_id,task_id,meeting_id,priority,department,has_document,has_meeting,has_github,members_json,metadata_json,created_at,updated_at`

// ActionFilter selects ledger entries. Results are newest first unless
// Ascending or AfterSeq is set, in which case they follow seq order.
type ActionFilter struct {
	ProjectID  string
	UserID     string
	Type       string
	Department string
	TaskID     string
	MeetingID  string
	AfterSeq   int64
	Ascending  bool
	Limit      int
}

func scanAction(row rowScanner) (domain.Action, error) {
	var (
		a                 domain.Action
		members, metadata string
		created, updated  int64
	)
	if err := row.Scan(&a.Seq, &a.ID, &a.Type, &a.Title, &a.Description, &a.User, &a.ProjectID, &a.TaskID, &a.MeetingID,
		&a.Priority, &a.Department, &a.HasDocument, &a.HasMeeting, &a.HasGitHub, &members, &metadata, &created, &updated); err != nil {
		return a, err
	}
	var err error
	if a.Members, err = unmarshalStrings(members); err != nil {
		return a, err
	}
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &a.Metadata); err != nil {
			return a, err
		}
	}
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}

// AppendAction inserts a new ledger entry. The id is always fresh; there is
// no path that updates an existing action.
func (r Repo) AppendAction(ctx context.Context, a domain.Action) (domain.Action, error) {
	now := r.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Members == nil {
		a.Members = []string{}
	}
	metadata := "{}"
	if len(a.Metadata) > 0 {
		raw, err := marshalJSON(a.Metadata)
		if err != nil {
			return domain.Action{}, domain.Persistence("encode action metadata", err)
		}
		metadata = raw
	}
	err := r.queryRow(ctx, `INSERT INTO actions(id,type,title,description,user_id,project_id,task_id,meeting_id,priority,department,
has_document,has_meeting,has_github,members_json,metadata_json,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) RETURNING seq`,
		a.ID, a.Type, a.Title, a.Description, a.User, a.ProjectID, a.TaskID, a.MeetingID, a.Priority, a.Department,
		a.HasDocument, a.HasMeeting, a.HasGitHub, marshalStrings(a.Members), metadata, toMillis(a.CreatedAt), toMillis(a.UpdatedAt)).Scan(&a.Seq)
	if err != nil {
		return domain.Action{}, domain.Persistence("append action", err)
	}
	return a, nil
}

func (r Repo) GetAction(ctx context.Context, id string) (domain.Action, error) {
	a, err := scanAction(r.queryRow(ctx, `SELECT `+actionColumns+` FROM actions WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return a, domain.NotFound(domain.KindAction, id)
	}
	if err != nil {
		return a, domain.Persistence("get action", err)
	}
	return a, nil
}

func actionWhere(f ActionFilter) where {
	var w where
	w.eq("project_id", f.ProjectID)
	w.eq("user_id", f.UserID)
	w.eq("type", f.Type)
	w.eq("department", f.Department)
	w.eq("task_id", f.TaskID)
	w.eq("meeting_id", f.MeetingID)
	if f.AfterSeq > 0 {
		w.add("seq>?", f.AfterSeq)
	}
	return w
}

func (r Repo) FindActions(ctx context.Context, f ActionFilter) ([]domain.Action, error) {
	w := actionWhere(f)
	order := ` ORDER BY created_at DESC, seq DESC`
	if f.Ascending || f.AfterSeq > 0 {
		order = ` ORDER BY seq ASC`
	}
	rows, err := r.query(ctx, `SELECT `+actionColumns+` FROM actions`+w.sql()+order+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, domain.Persistence("find actions", err)
	}
	defer rows.Close()
	var res []domain.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, domain.Persistence("scan action", err)
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("find actions", err)
	}
	return res, nil
}

func (r Repo) CountActions(ctx context.Context, f ActionFilter) (int, error) {
	w := actionWhere(f)
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM actions`+w.sql(), w.args...).Scan(&n); err != nil {
		return 0, domain.Persistence("count actions", err)
	}
	return n, nil
}
