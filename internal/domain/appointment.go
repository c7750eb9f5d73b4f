package domain

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PendingConfirmation"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
)

type VisitStatus string

const (
	VisitStatusNotCompleted VisitStatus = "NotCompleted"
	VisitStatusCompleted    VisitStatus = "Completed"
)

// Appointment is a patient's booking of one (doctor, day, hour) slot.
// VisitStatus may only become Completed while Status is Confirmed.
type Appointment struct {
	ID             string
	DoctorEmail    string
	DoctorName     string
	PatientEmail   string
	PatientName    string
	Day            string
	Hour           string
	AreaOfInterest string
	Status         AppointmentStatus
	VisitStatus    VisitStatus
	RemindersSent  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
