package review

import (
	"context"
	"fmt"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/google/uuid"
)

type ReviewUseCase interface {
	Submit(ctx context.Context, review *domain.Review, actorEmail string) error
	ListByDoctor(ctx context.Context, doctorName string) ([]domain.Review, error)
}

type ReviewService struct {
	reviews repository.ReviewRepository
}

func NewReviewService(reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// Submit stores a review for the caller's own appointment. A mismatch between
// the review's patient and the verified caller is always Forbidden.
func (s *ReviewService) Submit(ctx context.Context, review *domain.Review, actorEmail string) error {
	if review.PatientEmail == "" || review.DoctorName == "" {
		return fmt.Errorf("%w: patientEmail and doctorName are required", domain.ErrInvalidRequest)
	}
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidRequest)
	}
	if review.PatientEmail != actorEmail {
		return domain.ErrForbidden
	}

	review.ID = uuid.NewString()
	return s.reviews.Create(ctx, review)
}

func (s *ReviewService) ListByDoctor(ctx context.Context, doctorName string) ([]domain.Review, error) {
	return s.reviews.ListByDoctor(ctx, doctorName)
}

var _ ReviewUseCase = (*ReviewService)(nil)
