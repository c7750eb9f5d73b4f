package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AppointmentUseCase interface {
	Request(ctx context.Context, input RequestInput) (*domain.Appointment, error)
	Confirm(ctx context.Context, id, actorEmail string) (*domain.Appointment, error)
	Book(ctx context.Context, input BookInput) (*domain.Appointment, error)
	CompleteVisit(ctx context.Context, id, actorEmail string) (*domain.Appointment, error)
	Cancel(ctx context.Context, id, actorEmail string) error
	ListByPatient(ctx context.Context, patientEmail string) ([]domain.Appointment, error)
	ListConfirmed(ctx context.Context) ([]domain.Appointment, error)
}

type Notifier interface {
	AppointmentReminder(ctx context.Context, appt *domain.Appointment) error
	ReviewRequest(ctx context.Context, appt *domain.Appointment) error
}

type SlotLocker interface {
	AcquireSlotLock(ctx context.Context, doctorEmail, day, hour string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, doctorEmail, day, hour string) error
}

type AppointmentService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	locker       SlotLocker
	notifier     Notifier
	holdTTL      time.Duration
	log          zerolog.Logger
}

type RequestInput struct {
	DoctorEmail    string `json:"doctorEmail"`
	DoctorName     string `json:"doctorName"`
	PatientEmail   string `json:"patientEmail"`
	PatientName    string `json:"patientName"`
	Day            string `json:"day"`
	Hour           string `json:"hour"`
	AreaOfInterest string `json:"areaOfInterest"`
}

// BookInput is the direct booking path: the slot is consumed up front and the
// appointment record is written already confirmed.
type BookInput struct {
	DoctorEmail  string `json:"doctorEmail"`
	PatientEmail string `json:"patientEmail"`
	PatientName  string `json:"patientName"`
	Day          string `json:"day"`
	Hour         string `json:"hour"`
}

func NewAppointmentService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	locker SlotLocker,
	notifier Notifier,
	holdTTL time.Duration,
	log zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		doctors:      doctors,
		locker:       locker,
		notifier:     notifier,
		holdTTL:      holdTTL,
		log:          log,
	}
}

// Request stores a pending appointment and enqueues a confirmation reminder.
// The doctor's hour is not consumed here: the patient may still negotiate,
// and other pending requests for the same slot are allowed to coexist.
func (s *AppointmentService) Request(ctx context.Context, input RequestInput) (*domain.Appointment, error) {
	if err := validateRequest(input); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		ID:             uuid.NewString(),
		DoctorEmail:    input.DoctorEmail,
		DoctorName:     input.DoctorName,
		PatientEmail:   input.PatientEmail,
		PatientName:    input.PatientName,
		Day:            input.Day,
		Hour:           input.Hour,
		AreaOfInterest: input.AreaOfInterest,
		Status:         domain.AppointmentStatusPending,
		VisitStatus:    domain.VisitStatusNotCompleted,
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	// The stored appointment stands even if the reminder cannot be queued;
	// the failure is logged for monitoring instead of rolling back.
	if err := s.notifier.AppointmentReminder(ctx, appt); err != nil {
		s.log.Warn().Err(err).
			Str("appointment_id", appt.ID).
			Str("patient", appt.PatientEmail).
			Msg("appointment stored but reminder not published")
	}
	return appt, nil
}

// Confirm moves a pending appointment to Confirmed and consumes the doctor's
// hour. Only the owning patient may confirm. Of two concurrent confirmations
// exactly one wins; the loser observes the already-confirmed state.
func (s *AppointmentService) Confirm(ctx context.Context, id, actorEmail string) (*domain.Appointment, error) {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.PatientEmail != actorEmail {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.AppointmentStatusPending {
		return nil, domain.ErrInvalidState
	}

	updated, err := s.appointments.Confirm(ctx, id)
	if err != nil {
		s.log.Info().Err(err).
			Str("appointment_id", id).
			Str("actor", actorEmail).
			Msg("confirm appointment rejected")
		return nil, err
	}
	return updated, nil
}

// Book reserves the hour first and writes the appointment already confirmed.
// A redis hold narrows the race window before the database decides ownership.
func (s *AppointmentService) Book(ctx context.Context, input BookInput) (*domain.Appointment, error) {
	if input.DoctorEmail == "" || input.PatientEmail == "" || input.Day == "" || input.Hour == "" {
		return nil, fmt.Errorf("%w: doctorEmail, patientEmail, day and hour are required", domain.ErrInvalidRequest)
	}

	doctor, err := s.doctors.GetByEmail(ctx, input.DoctorEmail)
	if err != nil {
		return nil, err
	}

	locked := false
	if s.locker != nil {
		ok, err := s.locker.AcquireSlotLock(ctx, input.DoctorEmail, input.Day, input.Hour, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSlotUnavailable
		}
		locked = true
	}

	if err := s.doctors.ReserveHour(ctx, input.DoctorEmail, input.Hour); err != nil {
		if locked {
			_ = s.locker.ReleaseSlotLock(ctx, input.DoctorEmail, input.Day, input.Hour)
		}
		return nil, err
	}

	appt := &domain.Appointment{
		ID:             uuid.NewString(),
		DoctorEmail:    doctor.Email,
		DoctorName:     doctor.DoctorName,
		PatientEmail:   input.PatientEmail,
		PatientName:    input.PatientName,
		Day:            input.Day,
		Hour:           input.Hour,
		AreaOfInterest: doctor.AreaOfInterest,
		Status:         domain.AppointmentStatusConfirmed,
		VisitStatus:    domain.VisitStatusNotCompleted,
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		// The hour stays consumed: inventory is not returned on failure,
		// matching the reservation semantics of the rest of the system.
		if locked {
			_ = s.locker.ReleaseSlotLock(ctx, input.DoctorEmail, input.Day, input.Hour)
		}
		return nil, err
	}

	if locked {
		_ = s.locker.ReleaseSlotLock(ctx, input.DoctorEmail, input.Day, input.Hour)
	}
	return appt, nil
}

// CompleteVisit marks a confirmed visit as completed and requests a review
// exactly once. The conditional update makes a second call fail before any
// duplicate review notification can be published.
func (s *AppointmentService) CompleteVisit(ctx context.Context, id, actorEmail string) (*domain.Appointment, error) {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.PatientEmail != actorEmail {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.AppointmentStatusConfirmed || current.VisitStatus == domain.VisitStatusCompleted {
		return nil, domain.ErrInvalidState
	}

	updated, err := s.appointments.CompleteVisit(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.ReviewRequest(ctx, updated); err != nil {
		s.log.Warn().Err(err).
			Str("appointment_id", updated.ID).
			Str("patient", updated.PatientEmail).
			Msg("visit completed but review request not published")
	}
	return updated, nil
}

// Cancel deletes a pending appointment. Confirmed appointments cannot be
// cancelled, and the hour they consumed is not returned to the doctor.
func (s *AppointmentService) Cancel(ctx context.Context, id, actorEmail string) error {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.PatientEmail != actorEmail {
		return domain.ErrForbidden
	}
	if current.Status != domain.AppointmentStatusPending {
		return domain.ErrInvalidState
	}
	return s.appointments.Delete(ctx, id)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientEmail string) ([]domain.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientEmail)
}

func (s *AppointmentService) ListConfirmed(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointments.ListByStatus(ctx, domain.AppointmentStatusConfirmed)
}

func validateRequest(input RequestInput) error {
	required := map[string]string{
		"doctorEmail":    input.DoctorEmail,
		"patientEmail":   input.PatientEmail,
		"day":            input.Day,
		"hour":           input.Hour,
		"areaOfInterest": input.AreaOfInterest,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidRequest, field)
		}
	}
	return nil
}

var _ AppointmentUseCase = (*AppointmentService)(nil)
