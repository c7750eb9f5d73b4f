package domain

import "time"

// Doctor holds the bookable hour inventory. AvailableHours is mutated only
// through the reservation path, one hour token at a time.
type Doctor struct {
	Email          string
	DoctorName     string
	AreaOfInterest string
	City           string
	Address        string
	AvailableHours []string
	Approved       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Review struct {
	ID            string
	AppointmentID string
	PatientEmail  string
	DoctorName    string
	ReviewText    string
	Rating        int
	CreatedAt     time.Time
}
