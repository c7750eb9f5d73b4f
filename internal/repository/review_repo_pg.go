package repository

import (
	"context"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByDoctor(ctx context.Context, doctorName string) ([]domain.Review, error)
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.QueryRow(ctx, `INSERT INTO reviews (id, appointment_id, patient_email, doctor_name, review_text, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		review.ID, review.AppointmentID, review.PatientEmail, review.DoctorName, review.ReviewText, review.Rating).
		Scan(&review.CreatedAt)
}

func (r *PGReviewRepository) ListByDoctor(ctx context.Context, doctorName string) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, `SELECT id, appointment_id, patient_email, doctor_name, review_text, rating, created_at
		FROM reviews WHERE doctor_name=$1 ORDER BY created_at DESC`, doctorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.AppointmentID, &rv.PatientEmail, &rv.DoctorName, &rv.ReviewText, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

var _ ReviewRepository = (*PGReviewRepository)(nil)
