package entities

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// Coordinates is a WGS 84 point in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Clinic struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Vaccines  []string `json:"vaccines"` // Names of offered vaccines
}

func (c Clinic) Coordinates() Coordinates {
	return Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Validate checks the coordinate ranges of the clinic.
func (c Clinic) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("clinic %d: latitude %f out of range", c.ID, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("clinic %d: longitude %f out of range", c.ID, c.Longitude)
	}
	return nil
}

type Vaccine struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ClinicID int    `json:"clinic_id"`
}

type Patient struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"` // Unique
}

type Appointment struct {
	ID              int               `json:"id"`
	ClinicID        int               `json:"clinic_id"`
	PatientID       int               `json:"patient_id"`
	AppointmentTime time.Time         `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ClinicAvailability is one ranked entry of an availability search.
type ClinicAvailability struct {
	Clinic       Clinic        `json:"clinic"`
	Appointments []Appointment `json:"appointments"`
	Distance     float64       `json:"distance"` // Kilometers from the requested location
}
