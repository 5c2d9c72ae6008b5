package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/database"
	"github.com/iliyamo/mentor-marketplace/internal/model"
)

// BookingRepo provides persistence for bookings.  All timestamps are
// stored in UTC with second precision.
type BookingRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewBookingRepo returns a BookingRepo bound to db.  dialect controls
// whether row locks are requested; an empty dialect means MySQL.
func NewBookingRepo(db *sql.DB, dialect database.Dialect) *BookingRepo {
	return &BookingRepo{db: db, dialect: dialectOrDefault(dialect)}
}

const bookingColumns = "b.id, b.mentor_id, b.requester_id, b.start_at, b.end_at, b.time_zone, b.status, b.type, b.created_at, b.updated_at"

// AdmitFunc decides whether a booking fits the mentor's windows.  It runs
// inside the creating transaction after the mentor row is locked.
type AdmitFunc func(windows []model.AvailabilityWindow) error

// CreateExclusive inserts b as a new booking if and only if admit accepts
// the mentor's current windows and no non-cancelled booking of the same
// mentor overlaps [b.StartAt, b.EndAt).  The mentor row is locked first so
// concurrent calls for one mentor serialize; an inactive mentor reads as
// not found.  On success b.ID, CreatedAt
// and UpdatedAt are populated.
func (r *BookingRepo) CreateExclusive(ctx context.Context, b *model.Booking, admit AdmitFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	var locked uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = ? AND role = ? AND is_active = ?`+r.dialect.ForUpdate(),
		b.MentorID, model.RoleMentor, true).Scan(&locked)
	if err != nil {
		return notFound(err, "mentor")
	}

	windows, err := windowsForMentorTx(ctx, tx, b.MentorID)
	if err != nil {
		return err
	}
	if admit != nil {
		if err := admit(windows); err != nil {
			return err
		}
	}

	start := b.StartAt.UTC().Truncate(time.Second)
	end := b.EndAt.UTC().Truncate(time.Second)
	var overlapping int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE mentor_id = ? AND status <> ? AND start_at < ? AND end_at > ?`,
		b.MentorID, model.StatusCancelled, end, start).Scan(&overlapping)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return apperr.Wrap(apperr.ErrSlotUnavailable, "the requested time overlaps an existing booking")
	}

	now := nowUTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (mentor_id, requester_id, start_at, end_at, time_zone, status, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.MentorID, b.RequesterID, start, end, b.TimeZone, b.Status, b.Type, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.ID = uint64(id)
	b.StartAt, b.EndAt = start, end
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// GetByID returns a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id), &b)
	if err != nil {
		return model.Booking{}, notFound(err, "booking")
	}
	return b, nil
}

// ListForParticipant returns bookings where userID is the mentor
// (asMentor) or the requester, each with the other side's identity.
// Results are ordered by start time.
func (r *BookingRepo) ListForParticipant(ctx context.Context, userID uint64, asMentor bool) ([]model.BookingDetail, error) {
	self, other := "b.requester_id", "b.mentor_id"
	if asMentor {
		self, other = "b.mentor_id", "b.requester_id"
	}
	q := `SELECT ` + bookingColumns + `, u.id, u.name, u.email
	      FROM bookings b
	      JOIN users u ON u.id = ` + other + `
	      WHERE ` + self + ` = ?
	      ORDER BY b.start_at, b.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(&d.ID, &d.MentorID, &d.RequesterID, &d.StartAt, &d.EndAt, &d.TimeZone,
			&d.Status, &d.Type, &d.CreatedAt, &d.UpdatedAt,
			&d.Counterpart.ID, &d.Counterpart.Name, &d.Counterpart.Email); err != nil {
			return nil, err
		}
		d.StartAt, d.EndAt = d.StartAt.UTC(), d.EndAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListActiveBetween returns non-cancelled bookings overlapping [from, to).
// mentorID 0 selects every mentor.
func (r *BookingRepo) ListActiveBetween(ctx context.Context, mentorID uint64, from, to time.Time) ([]model.Booking, error) {
	var q strings.Builder
	q.WriteString(`SELECT ` + bookingColumns + ` FROM bookings b WHERE b.status <> ? AND b.start_at < ? AND b.end_at > ?`)
	args := []any{model.StatusCancelled, to.UTC().Truncate(time.Second), from.UTC().Truncate(time.Second)}
	if mentorID != 0 {
		q.WriteString(` AND b.mentor_id = ?`)
		args = append(args, mentorID)
	}
	q.WriteString(` ORDER BY b.mentor_id, b.start_at`)
	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves booking id from status from to status to.  The update
// is conditional on the current status so a concurrent change makes it
// fail with ErrInvalidTransition instead of silently overwriting.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, nowUTC(), id, from)
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 0 {
		return model.Booking{}, apperr.Wrap(apperr.ErrInvalidTransition, "booking status changed concurrently")
	}
	return r.GetByID(ctx, id)
}

func scanBooking(s rowScanner, b *model.Booking) error {
	if err := s.Scan(&b.ID, &b.MentorID, &b.RequesterID, &b.StartAt, &b.EndAt, &b.TimeZone,
		&b.Status, &b.Type, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	b.StartAt, b.EndAt = b.StartAt.UTC(), b.EndAt.UTC()
	return nil
}
