package doctors

import (
	"context"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/rs/zerolog"
)

type DoctorUseCase interface {
	Search(ctx context.Context, query repository.DoctorQuery) ([]domain.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
	Register(ctx context.Context, doctor *domain.Doctor) error
	Approve(ctx context.Context, email string) error
}

type DirectoryCache interface {
	GetDoctors(ctx context.Context) ([]domain.Doctor, error)
	SetDoctors(ctx context.Context, doctors []domain.Doctor) error
	InvalidateDoctors(ctx context.Context) error
}

type DoctorService struct {
	repo  repository.DoctorRepository
	cache DirectoryCache
	log   zerolog.Logger
}

func NewDoctorService(repo repository.DoctorRepository, cache DirectoryCache, log zerolog.Logger) *DoctorService {
	return &DoctorService{repo: repo, cache: cache, log: log}
}

// Search serves the unfiltered first page from the cache when possible;
// filtered queries always go to the store.
func (s *DoctorService) Search(ctx context.Context, query repository.DoctorQuery) ([]domain.Doctor, error) {
	if s.cache != nil && query.AreaOfInterest == "" && query.City == "" && query.DoctorName == "" && query.Page <= 1 {
		if cached, err := s.cache.GetDoctors(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	doctors, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && query.AreaOfInterest == "" && query.City == "" && query.DoctorName == "" && query.Page <= 1 {
		_ = s.cache.SetDoctors(ctx, doctors)
	}
	return doctors, nil
}

func (s *DoctorService) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Register stores an unapproved doctor; the record stays invisible to
// patients until Approve runs.
func (s *DoctorService) Register(ctx context.Context, doctor *domain.Doctor) error {
	doctor.Approved = false
	return s.repo.Create(ctx, doctor)
}

// Approve is an operator action with no ownership check; authorization is the
// caller's responsibility.
func (s *DoctorService) Approve(ctx context.Context, email string) error {
	if err := s.repo.Approve(ctx, email); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateDoctors(ctx)
	}
	s.log.Info().Str("doctor", email).Msg("doctor approved")
	return nil
}

var _ DoctorUseCase = (*DoctorService)(nil)
