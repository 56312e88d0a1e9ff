package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"connex/internal/domain"
)

const userColumns = `id,name,email,password_hash,role,department,contact_json,skills_json,bio,teams_json,join_date,avatar,created_at,updated_at`

type UserFilter struct {
	IDs   []string
	Email string
	Limit int
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                          domain.User
		contact, skills, teams     string
		joinDate, created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &contact, &skills, &u.Bio, &teams, &joinDate, &u.Avatar, &created, &updated); err != nil {
		return u, err
	}
	if contact != "" {
		if err := json.Unmarshal([]byte(contact), &u.Contact); err != nil {
			return u, err
		}
	}
	var err error
	if u.Skills, err = unmarshalStrings(skills); err != nil {
		return u, err
	}
	if u.Teams, err = unmarshalStrings(teams); err != nil {
		return u, err
	}
	u.JoinDate = fromMillis(joinDate)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

// SaveUser upserts u. Email is stored lower-cased; avatar defaults to initials.
func (r Repo) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	r.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.JoinDate.IsZero() {
		u.JoinDate = u.CreatedAt
	}
	if u.Avatar == "" {
		u.Avatar = domain.Initials(u.Name)
	}
	contact, err := marshalJSON(u.Contact)
	if err != nil {
		return domain.User{}, domain.Persistence("encode user contact", err)
	}
	_, err = r.exec(ctx, `INSERT INTO users(`+userColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name,email=excluded.email,password_hash=excluded.password_hash,role=excluded.role,
department=excluded.department,contact_json=excluded.contact_json,skills_json=excluded.skills_json,bio=excluded.bio,
teams_json=excluded.teams_json,join_date=excluded.join_date,avatar=excluded.avatar,updated_at=excluded.updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Department, contact, marshalStrings(u.Skills), u.Bio,
		marshalStrings(u.Teams), toMillis(u.JoinDate), u.Avatar, toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if uniqueViolation(err) {
		return domain.User{}, domain.Validationf("email", "email %s is already registered", u.Email)
	}
	if err != nil {
		return domain.User{}, domain.Persistence("save user", err)
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Teams == nil {
		u.Teams = []string{}
	}
	return u, nil
}

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return u, domain.NotFound(domain.KindUser, id)
	}
	if err != nil {
		return u, domain.Persistence("get user", err)
	}
	return u, nil
}

func (r Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=?`, email))
	if err == sql.ErrNoRows {
		return u, domain.NotFound(domain.KindUser, email)
	}
	if err != nil {
		return u, domain.Persistence("get user by email", err)
	}
	return u, nil
}

func (r Repo) FindUsers(ctx context.Context, f UserFilter) ([]domain.User, error) {
	var w where
	w.in("id", f.IDs)
	if f.Email != "" {
		w.eq("email", strings.ToLower(f.Email))
	}
	rows, err := r.query(ctx, `SELECT `+userColumns+` FROM users`+w.sql()+` ORDER BY name ASC, id ASC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, domain.Persistence("find users", err)
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.Persistence("scan user", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("find users", err)
	}
	return res, nil
}

// UsersByIDs returns the users found among ids keyed by id. Missing ids are
// absent from the map.
func (r Repo) UsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	users, err := r.FindUsers(ctx, UserFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
