package reminder

import (
	"context"
	"time"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/rs/zerolog"
)

type Notifier interface {
	AppointmentReminder(ctx context.Context, appt *domain.Appointment) error
}

// Scheduler re-publishes confirmation reminders for every still-pending
// appointment on a fixed period. The sweep is not idempotent by default;
// maxReminders > 0 caps how often one appointment is re-notified.
type Scheduler struct {
	appointments repository.AppointmentRepository
	notifier     Notifier
	period       time.Duration
	maxReminders int
	log          zerolog.Logger
}

func NewScheduler(
	appointments repository.AppointmentRepository,
	notifier Notifier,
	period time.Duration,
	maxReminders int,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		appointments: appointments,
		notifier:     notifier,
		period:       period,
		maxReminders: maxReminders,
		log:          log,
	}
}

// Run blocks until the context is canceled, sweeping once per period.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, err := s.Sweep(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("reminder sweep failed")
				continue
			}
			s.log.Info().Int("reminders_sent", sent).Msg("reminder sweep finished")
		case <-ctx.Done():
			return
		}
	}
}

// Sweep publishes a fresh reminder for each pending appointment that still
// has all fields needed to render one. Broken records are reported and
// skipped, never retried within the same run.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	pending, err := s.appointments.ListByStatus(ctx, domain.AppointmentStatusPending)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		appt := &pending[i]
		if appt.PatientEmail == "" || appt.Day == "" || appt.Hour == "" || appt.DoctorName == "" {
			s.log.Error().Str("appointment_id", appt.ID).Msg("pending appointment missing required fields, skipping reminder")
			continue
		}
		if s.maxReminders > 0 && appt.RemindersSent >= s.maxReminders {
			continue
		}
		if err := s.notifier.AppointmentReminder(ctx, appt); err != nil {
			s.log.Error().Err(err).Str("appointment_id", appt.ID).Msg("reminder publish failed")
			continue
		}
		if err := s.appointments.IncrementReminders(ctx, appt.ID); err != nil {
			s.log.Warn().Err(err).Str("appointment_id", appt.ID).Msg("reminder counter not updated")
		}
		sent++
	}
	return sent, nil
}
