package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/mentor-marketplace/internal/model"
)

// AvailabilityRepo stores the recurring weekly windows mentors publish.
type AvailabilityRepo struct {
	db *sql.DB
}

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const windowColumns = "id, mentor_id, day_of_week, start_time, end_time, time_zone, created_at"

// Create inserts one window and fills in its ID and CreatedAt.
func (r *AvailabilityRepo) Create(ctx context.Context, w *model.AvailabilityWindow) error {
	return r.CreateMany(ctx, []*model.AvailabilityWindow{w})
}

// CreateMany inserts all windows in a single transaction.  Either every
// window is stored or none is.
func (r *AvailabilityRepo) CreateMany(ctx context.Context, ws []*model.AvailabilityWindow) error {
	if len(ws) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)
	now := nowUTC()
	for _, w := range ws {
		w.CreatedAt = now
		if err := r.CreateTx(ctx, tx, w); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateTx inserts w within an existing transaction.
func (r *AvailabilityRepo) CreateTx(ctx context.Context, tx *sql.Tx, w *model.AvailabilityWindow) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = nowUTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO availability_windows (mentor_id, day_of_week, start_time, end_time, time_zone, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		w.MentorID, w.DayOfWeek, w.StartTime, w.EndTime, w.TimeZone, w.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// ListByMentor returns a mentor's windows ordered by weekday then start.
func (r *AvailabilityRepo) ListByMentor(ctx context.Context, mentorID uint64) ([]model.AvailabilityWindow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+windowColumns+` FROM availability_windows WHERE mentor_id = ? ORDER BY day_of_week, start_time, id`,
		mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailabilityWindow, 0)
	for rows.Next() {
		var w model.AvailabilityWindow
		if err := scanWindow(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListMentorWindows returns windows joined with their mentor's public
// identity.  mentorID 0 selects every mentor.
func (r *AvailabilityRepo) ListMentorWindows(ctx context.Context, mentorID uint64) ([]model.MentorWindow, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`SELECT w.id, w.mentor_id, w.day_of_week, w.start_time, w.end_time, w.time_zone, w.created_at,
	                      u.name, u.email
	               FROM availability_windows w
	               JOIN users u ON u.id = w.mentor_id
	               WHERE u.role = 'MENTOR' AND u.is_active = ?`)
	args = append(args, true)
	if mentorID != 0 {
		q.WriteString(` AND w.mentor_id = ?`)
		args = append(args, mentorID)
	}
	q.WriteString(` ORDER BY w.mentor_id, w.day_of_week, w.start_time, w.id`)
	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MentorWindow, 0)
	for rows.Next() {
		var mw model.MentorWindow
		if err := rows.Scan(&mw.ID, &mw.MentorID, &mw.DayOfWeek, &mw.StartTime, &mw.EndTime, &mw.TimeZone,
			&mw.CreatedAt, &mw.Mentor.Name, &mw.Mentor.Email); err != nil {
			return nil, err
		}
		mw.Mentor.ID = mw.MentorID
		out = append(out, mw)
	}
	return out, rows.Err()
}

// Delete removes a window owned by mentorID.  A window that does not exist
// or belongs to someone else is reported as not found.
func (r *AvailabilityRepo) Delete(ctx context.Context, mentorID, windowID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_windows WHERE id = ? AND mentor_id = ?`, windowID, mentorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(sql.ErrNoRows, "availability window")
	}
	return nil
}

// windowsForMentorTx loads a mentor's windows inside tx.
func windowsForMentorTx(ctx context.Context, tx *sql.Tx, mentorID uint64) ([]model.AvailabilityWindow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+windowColumns+` FROM availability_windows WHERE mentor_id = ? ORDER BY day_of_week, start_time, id`,
		mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailabilityWindow, 0)
	for rows.Next() {
		var w model.AvailabilityWindow
		if err := scanWindow(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWindow(s rowScanner, w *model.AvailabilityWindow) error {
	return s.Scan(&w.ID, &w.MentorID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.TimeZone, &w.CreatedAt)
}
