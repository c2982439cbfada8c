package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zapisnik/internal/model"
)

var (
	// ErrAppointmentNotFound is returned when no appointment matches the id.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrAlreadyDecided is returned when deciding an appointment that is no
	// longer pending.
	ErrAlreadyDecided = errors.New("appointment already decided")
)

const appointmentColumns = "id, user, chat_id, time, reason, message, status, created_at, updated_at"

// CreateAppointment inserts a new appointment and fills in its id.
func (db *DB) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.Status == "" {
		a.Status = model.StatusPending
	}
	now := time.Now()
	res, err := db.ExecContext(ctx, `
        INSERT INTO appointments (user, chat_id, time, reason, message, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.User, a.ChatID, a.Time, a.Reason, a.Message, a.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// GetAppointment returns an appointment by id.
func (db *DB) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE id = ?", id)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAppointments returns all appointments ordered by slot time.
func (db *DB) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return db.queryAppointments(ctx,
		"SELECT "+appointmentColumns+" FROM appointments ORDER BY time ASC")
}

// ListByStatus returns appointments with the given status, ascending by slot time.
func (db *DB) ListByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	return db.queryAppointments(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE status = ? ORDER BY time ASC", status)
}

// ListActive returns pending and accepted appointments, ascending by slot time.
func (db *DB) ListActive(ctx context.Context) ([]model.Appointment, error) {
	return db.queryAppointments(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE status IN ('pending', 'accepted') ORDER BY time ASC")
}

// ActiveDates returns the distinct dates that carry at least one pending or
// accepted appointment.
func (db *DB) ActiveDates(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT DISTINCT substr(time, 1, 10) FROM appointments
        WHERE status IN ('pending', 'accepted')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ActiveTimesOnDate returns the time-of-day slots taken on a date by pending
// or accepted appointments.
func (db *DB) ActiveTimesOnDate(ctx context.Context, date string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT substr(time, 12) FROM appointments
        WHERE time LIKE ? AND status IN ('pending', 'accepted')`,
		date+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// DecideAppointment moves a pending appointment to a final status.
// Returns ErrAppointmentNotFound for an unknown id and ErrAlreadyDecided when
// the appointment left the pending state earlier.
func (db *DB) DecideAppointment(ctx context.Context, id int64, status string) error {
	if !model.CanTransition(model.StatusPending, status) {
		return fmt.Errorf("invalid target status %q", status)
	}
	res, err := db.ExecContext(ctx,
		"UPDATE appointments SET status = ?, updated_at = ? WHERE id = ? AND status = 'pending'",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := db.GetAppointment(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyDecided
	}
	return nil
}

func (db *DB) queryAppointments(ctx context.Context, query string, args ...any) ([]model.Appointment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (*model.Appointment, error) {
	var a model.Appointment
	var user, reason, message sql.NullString
	err := row.Scan(&a.ID, &user, &a.ChatID, &a.Time, &reason, &message, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.User = user.String
	a.Reason = reason.String
	a.Message = message.String
	return &a, nil
}
