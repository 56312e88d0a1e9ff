package repo

import (
	"context"
	"database/sql"
	"time"

	"connex/internal/domain"
)

const meetingColumns = `id,name,description,type,status,scheduled_at,duration,location,host,joined_members_json,agenda_json,has_document,has_recording,document_url,recording_url,project_id,created_at,updated_at`

const (
	SortTimeDesc = "time_desc"
	SortTimeAsc  = "time_asc"
)

// MeetingFilter bounds the scheduled time inclusively with NotAfter and
// NotBefore.
type MeetingFilter struct {
	ProjectID string
	Status    string
	Type      string
	NotAfter  *time.Time
	NotBefore *time.Time
	Sort      string
	Limit     int
}

func scanMeeting(row rowScanner) (domain.Meeting, error) {
	var (
		m                    domain.Meeting
		joined, agenda       string
		at, created, updated int64
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Type, &m.Status, &at, &m.Duration, &m.Location, &m.Host, &joined, &agenda,
		&m.HasDocument, &m.HasRecording, &m.DocumentURL, &m.RecordingURL, &m.ProjectID, &created, &updated); err != nil {
		return m, err
	}
	var err error
	if m.JoinedMembers, err = unmarshalStrings(joined); err != nil {
		return m, err
	}
	if m.Agenda, err = unmarshalStrings(agenda); err != nil {
		return m, err
	}
	m.Time = fromMillis(at)
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(updated)
	return m, nil
}

func (r Repo) SaveMeeting(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	r.stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if m.JoinedMembers == nil {
		m.JoinedMembers = []string{}
	}
	if m.Agenda == nil {
		m.Agenda = []string{}
	}
	_, err := r.exec(ctx, `INSERT INTO meetings(`+meetingColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name,description=excluded.description,type=excluded.type,status=excluded.status,
scheduled_at=excluded.scheduled_at,duration=excluded.duration,location=excluded.location,host=excluded.host,joined_members_json=excluded.joined_members_json,
agenda_json=excluded.agenda_json,has_document=excluded.has_document,has_recording=excluded.has_recording,document_url=excluded.document_url,
recording_url=excluded.recording_url,project_id=excluded.project_id,updated_at=excluded.updated_at`,
		m.ID, m.Name, m.Description, m.Type, m.Status, toMillis(m.Time), m.Duration, m.Location, m.Host,
		marshalStrings(m.JoinedMembers), marshalStrings(m.Agenda), m.HasDocument, m.HasRecording, m.DocumentURL, m.RecordingURL,
		m.ProjectID, toMillis(m.CreatedAt), toMillis(m.UpdatedAt))
	if err != nil {
		return domain.Meeting{}, domain.Persistence("save meeting", err)
	}
	return m, nil
}

func (r Repo) GetMeeting(ctx context.Context, id string) (domain.Meeting, error) {
	m, err := scanMeeting(r.queryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return m, domain.NotFound(domain.KindMeeting, id)
	}
	if err != nil {
		return m, domain.Persistence("get meeting", err)
	}
	return m, nil
}

// FindMeetings defaults to scheduled time descending.
func (r Repo) FindMeetings(ctx context.Context, f MeetingFilter) ([]domain.Meeting, error) {
	var w where
	w.eq("project_id", f.ProjectID)
	w.eq("status", f.Status)
	w.eq("type", f.Type)
	if f.NotAfter != nil {
		w.add("scheduled_at<=?", toMillis(*f.NotAfter))
	}
	if f.NotBefore != nil {
		w.add("scheduled_at>=?", toMillis(*f.NotBefore))
	}
	order := ` ORDER BY scheduled_at DESC, id DESC`
	if f.Sort == SortTimeAsc {
		order = ` ORDER BY scheduled_at ASC, id ASC`
	}
	rows, err := r.query(ctx, `SELECT `+meetingColumns+` FROM meetings`+w.sql()+order+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, domain.Persistence("find meetings", err)
	}
	defer rows.Close()
	var res []domain.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, domain.Persistence("scan meeting", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("find meetings", err)
	}
	return res, nil
}

func (r Repo) DeleteMeeting(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "meetings", domain.KindMeeting, id)
}
