package repository

import (
	"context"
	"errors"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	Confirm(ctx context.Context, id string) (*domain.Appointment, error)
	CompleteVisit(ctx context.Context, id string) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
	ListByPatient(ctx context.Context, patientEmail string) ([]domain.Appointment, error)
	ListByStatus(ctx context.Context, status domain.AppointmentStatus) ([]domain.Appointment, error)
	IncrementReminders(ctx context.Context, id string) error
}

type PGAppointmentRepository struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) AppointmentRepository {
	return &PGAppointmentRepository{db: db}
}

const appointmentColumns = `id, doctor_email, doctor_name, patient_email, patient_name, day, hour, area_of_interest, status, visit_status, reminders_sent, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := row.Scan(&a.ID, &a.DoctorEmail, &a.DoctorName, &a.PatientEmail, &a.PatientName, &a.Day, &a.Hour, &a.AreaOfInterest, &a.Status, &a.VisitStatus, &a.RemindersSent, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	return r.db.QueryRow(ctx, `INSERT INTO appointments (id, doctor_email, doctor_name, patient_email, patient_name, day, hour, area_of_interest, status, visit_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		appt.ID, appt.DoctorEmail, appt.DoctorName, appt.PatientEmail, appt.PatientName, appt.Day, appt.Hour, appt.AreaOfInterest, appt.Status, appt.VisitStatus).
		Scan(&appt.CreatedAt, &appt.UpdatedAt)
}

func (r *PGAppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	appt, err := scanAppointment(r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return appt, err
}

// Confirm flips status and consumes the doctor's hour in one transaction so
// of N concurrent confirmations for the same slot exactly one commits.
func (r *PGAppointmentRepository) Confirm(ctx context.Context, id string) (*domain.Appointment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	appt, err := scanAppointment(tx.QueryRow(ctx, `UPDATE appointments SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
		RETURNING `+appointmentColumns, domain.AppointmentStatusConfirmed, id, domain.AppointmentStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `UPDATE doctors SET available_hours = array_remove(available_hours, $2), updated_at=now()
		WHERE email=$1 AND $2 = ANY(available_hours)`, appt.DoctorEmail, appt.Hour)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrSlotUnavailable
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *PGAppointmentRepository) CompleteVisit(ctx context.Context, id string) (*domain.Appointment, error) {
	appt, err := scanAppointment(r.db.QueryRow(ctx, `UPDATE appointments SET visit_status=$1, updated_at=now()
		WHERE id=$2 AND status=$3 AND visit_status=$4
		RETURNING `+appointmentColumns,
		domain.VisitStatusCompleted, id, domain.AppointmentStatusConfirmed, domain.VisitStatusNotCompleted))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidState
	}
	return appt, err
}

func (r *PGAppointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id=$1 AND status=$2`, id, domain.AppointmentStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (r *PGAppointmentRepository) ListByPatient(ctx context.Context, patientEmail string) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_email=$1 ORDER BY created_at DESC`, patientEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PGAppointmentRepository) ListByStatus(ctx context.Context, status domain.AppointmentStatus) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE status=$1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PGAppointmentRepository) IncrementReminders(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE appointments SET reminders_sent = reminders_sent + 1, updated_at=now() WHERE id=$1`, id)
	return err
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.DoctorEmail, &a.DoctorName, &a.PatientEmail, &a.PatientName, &a.Day, &a.Hour, &a.AreaOfInterest, &a.Status, &a.VisitStatus, &a.RemindersSent, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

var _ AppointmentRepository = (*PGAppointmentRepository)(nil)
