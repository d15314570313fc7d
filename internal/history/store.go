package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mgilsanz/presencia/internal/domain"
)

// Entry is one journaled punch.
type Entry struct {
	ID           string
	EmployeeUID  int64
	Action       domain.AttendanceAction
	Project      domain.Project
	Task         domain.Task
	Observations string
	Progress     *int
	Coordinates  domain.Coordinates
	At           time.Time
}

// Store writes acknowledged punches for one employee and reads them
// back for display. Journal writes happen after the remote accepted the
// submission; a failed write is logged by the caller and never blocks a
// transition.
type Store struct {
	db  *sql.DB
	uid int64
}

// NewStore creates a Store bound to the given employee uid. A uid of 0
// is fine for read-only use.
func NewStore(db *sql.DB, uid int64) *Store {
	return &Store{db: db, uid: uid}
}

// Bind returns a Store that stamps uid on every write. Reads are
// unaffected.
func (s *Store) Bind(uid int64) *Store {
	return &Store{db: s.db, uid: uid}
}

func (s *Store) Record(ctx context.Context, ev domain.AttendanceEvent) error {
	query := `INSERT INTO punches (
		id, employee_uid, action, project_id, project_label,
		task_id, task_label, observations, progress, latitude, longitude, punched_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var progress any
	if ev.Progress != nil {
		progress = *ev.Progress
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(),
		s.uid,
		string(ev.Action),
		ev.Selection.Project.ID,
		ev.Selection.Project.Label,
		ev.Selection.Task.ID,
		ev.Selection.Task.Label,
		ev.Observations,
		progress,
		ev.Coordinates.Latitude,
		ev.Coordinates.Longitude,
		ev.At.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting punch: %w", err)
	}
	return nil
}

// Recent returns the newest punches first, at most limit of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT id, employee_uid, action, project_id, project_label,
		task_id, task_label, observations, progress, latitude, longitude, punched_at
		FROM punches ORDER BY punched_at DESC, id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent punches: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var (
			e         Entry
			action    string
			progress  sql.NullInt64
			punchedAt string
		)
		err := rows.Scan(
			&e.ID, &e.EmployeeUID, &action,
			&e.Project.ID, &e.Project.Label,
			&e.Task.ID, &e.Task.Label,
			&e.Observations, &progress,
			&e.Coordinates.Latitude, &e.Coordinates.Longitude,
			&punchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning punch row: %w", err)
		}
		e.Action = domain.AttendanceAction(action)
		if progress.Valid {
			p := int(progress.Int64)
			e.Progress = &p
		}
		e.At, err = time.Parse(time.RFC3339, punchedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing punched_at: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating punches: %w", err)
	}
	return entries, nil
}
