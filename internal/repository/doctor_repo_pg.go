package repository

import (
	"context"
	"errors"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DoctorQuery struct {
	AreaOfInterest string
	City           string
	DoctorName     string
	Page           int
	Size           int
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *domain.Doctor) error
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
	Search(ctx context.Context, query DoctorQuery) ([]domain.Doctor, error)
	ReserveHour(ctx context.Context, email, hour string) error
	Approve(ctx context.Context, email string) error
}

type PGDoctorRepository struct {
	db *pgxpool.Pool
}

func NewDoctorRepository(db *pgxpool.Pool) DoctorRepository {
	return &PGDoctorRepository{db: db}
}

const doctorColumns = `email, doctor_name, area_of_interest, city, address, available_hours, approved, created_at, updated_at`

func (r *PGDoctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	return r.db.QueryRow(ctx, `INSERT INTO doctors (email, doctor_name, area_of_interest, city, address, available_hours, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		doctor.Email, doctor.DoctorName, doctor.AreaOfInterest, doctor.City, doctor.Address, doctor.AvailableHours, doctor.Approved).
		Scan(&doctor.CreatedAt, &doctor.UpdatedAt)
}

func (r *PGDoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email=$1`, email)
	var d domain.Doctor
	if err := row.Scan(&d.Email, &d.DoctorName, &d.AreaOfInterest, &d.City, &d.Address, &d.AvailableHours, &d.Approved, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Search returns approved doctors only; unapproved records stay invisible to
// patients until the administrative approval lands.
func (r *PGDoctorRepository) Search(ctx context.Context, query DoctorQuery) ([]domain.Doctor, error) {
	if query.Size <= 0 {
		query.Size = 20
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	rows, err := r.db.Query(ctx, `SELECT `+doctorColumns+` FROM doctors
		WHERE approved = true
		AND ($1 = '' OR area_of_interest = $1)
		AND ($2 = '' OR city = $2)
		AND ($3 = '' OR doctor_name ILIKE '%' || $3 || '%')
		ORDER BY doctor_name
		LIMIT $4 OFFSET $5`,
		query.AreaOfInterest, query.City, query.DoctorName, query.Size, (query.Page-1)*query.Size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(&d.Email, &d.DoctorName, &d.AreaOfInterest, &d.City, &d.Address, &d.AvailableHours, &d.Approved, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// ReserveHour removes one hour token from the doctor's inventory as a single
// atomic statement. Concurrent callers for the same hour race on the
// `= ANY(available_hours)` guard and exactly one wins.
func (r *PGDoctorRepository) ReserveHour(ctx context.Context, email, hour string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE doctors SET available_hours = array_remove(available_hours, $2), updated_at=now()
		WHERE email=$1 AND $2 = ANY(available_hours)`, email, hour)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM doctors WHERE email=$1)`, email).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrDoctorNotFound
	}
	return domain.ErrSlotUnavailable
}

func (r *PGDoctorRepository) Approve(ctx context.Context, email string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE doctors SET approved = true, updated_at=now() WHERE email=$1`, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDoctorNotFound
	}
	return nil
}

var _ DoctorRepository = (*PGDoctorRepository)(nil)
