package review

import (
	"context"
	"testing"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) ListByDoctor(ctx context.Context, doctorName string) ([]domain.Review, error) {
	args := m.Called(ctx, doctorName)
	return args.Get(0).([]domain.Review), args.Error(1)
}

var _ repository.ReviewRepository = (*MockReviewRepository)(nil)

func validReview() *domain.Review {
	return &domain.Review{
		AppointmentID: "appt-1",
		PatientEmail:  "patient@x.com",
		DoctorName:    "House",
		ReviewText:    "Attentive and on time.",
		Rating:        5,
	}
}

func TestReviewService_Submit(t *testing.T) {
	mockRepo := &MockReviewRepository{}
	service := NewReviewService(mockRepo)

	ctx := context.Background()
	rv := validReview()
	mockRepo.On("Create", ctx, rv).Return(nil).Once()

	err := service.Submit(ctx, rv, "patient@x.com")

	assert.NoError(t, err)
	assert.NotEmpty(t, rv.ID)
	mockRepo.AssertExpectations(t)
}

func TestReviewService_Submit_ForbiddenForOtherPatient(t *testing.T) {
	mockRepo := &MockReviewRepository{}
	service := NewReviewService(mockRepo)

	err := service.Submit(context.Background(), validReview(), "intruder@x.com")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestReviewService_Submit_RatingOutOfRange(t *testing.T) {
	service := NewReviewService(&MockReviewRepository{})

	for _, rating := range []int{0, 6, -1} {
		rv := validReview()
		rv.Rating = rating
		err := service.Submit(context.Background(), rv, "patient@x.com")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
}

func TestReviewService_Submit_MissingFields(t *testing.T) {
	service := NewReviewService(&MockReviewRepository{})

	rv := validReview()
	rv.DoctorName = ""
	err := service.Submit(context.Background(), rv, "patient@x.com")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	rv = validReview()
	rv.PatientEmail = ""
	err = service.Submit(context.Background(), rv, "patient@x.com")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReviewService_ListByDoctor(t *testing.T) {
	mockRepo := &MockReviewRepository{}
	service := NewReviewService(mockRepo)

	ctx := context.Background()
	reviews := []domain.Review{{ID: "r1", DoctorName: "House", Rating: 4}}
	mockRepo.On("ListByDoctor", ctx, "House").Return(reviews, nil).Once()

	result, err := service.ListByDoctor(ctx, "House")

	assert.NoError(t, err)
	assert.Equal(t, reviews, result)
}
