package interfaces

import (
	"context"
	"signetic_scheduler/internal/entities"
)

// AIClient is the opaque language-model capability. The context map is the
// accumulated conversation state; output is free text.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, convo map[string]interface{}) (string, error)
}

// ClinicStore is the read side of the relational store used by availability search.
type ClinicStore interface {
	// ClinicsOfferingVaccine returns clinics with at least one vaccine row named
	// vaccineName, ordered by clinic id, with Vaccines populated.
	ClinicsOfferingVaccine(ctx context.Context, vaccineName string) ([]entities.Clinic, error)
	AppointmentsByStatus(ctx context.Context, clinicID int, status entities.AppointmentStatus) ([]entities.Appointment, error)
}

// Geocoder resolves a location name to coordinates. ok is false when unknown.
type Geocoder interface {
	Lookup(ctx context.Context, location string) (coords entities.Coordinates, ok bool, err error)
}

type Messenger interface {
	SendMessage(to, content string) error
}

// TurnProcessor runs one conversational turn against a session's context and
// returns the frame to deliver. It never returns nil.
type TurnProcessor interface {
	ProcessQuery(ctx context.Context, message string, convo *entities.ConversationContext) entities.Frame
}
