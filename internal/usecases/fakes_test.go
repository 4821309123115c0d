package usecases

import (
	"context"
	"errors"
	"signetic_scheduler/internal/entities"
	"strings"
	"time"
)

type fakeStore struct {
	clinics      []entities.Clinic
	appointments map[int][]entities.Appointment
	clinicErr    error
	apptErr      error
	apptCalls    int
}

func (s *fakeStore) ClinicsOfferingVaccine(_ context.Context, vaccineName string) ([]entities.Clinic, error) {
	if s.clinicErr != nil {
		return nil, s.clinicErr
	}
	var out []entities.Clinic
	for _, c := range s.clinics {
		for _, v := range c.Vaccines {
			if v == vaccineName {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) AppointmentsByStatus(_ context.Context, clinicID int, status entities.AppointmentStatus) ([]entities.Appointment, error) {
	s.apptCalls++
	if s.apptErr != nil {
		return nil, s.apptErr
	}
	var out []entities.Appointment
	for _, a := range s.appointments[clinicID] {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeGeocoder map[string]entities.Coordinates

func (g fakeGeocoder) Lookup(_ context.Context, location string) (entities.Coordinates, bool, error) {
	c, ok := g[strings.ToLower(location)]
	return c, ok, nil
}

type fakeAI struct {
	reply   string
	err     error
	panics  bool
	prompts []string
	convos  []map[string]interface{}
}

func (f *fakeAI) GenerateResponse(_ context.Context, prompt string, convo map[string]interface{}) (string, error) {
	if f.panics {
		panic("model exploded")
	}
	f.prompts = append(f.prompts, prompt)
	f.convos = append(f.convos, convo)
	return f.reply, f.err
}

var errStoreDown = errors.New("connection refused")

func appt(id, clinicID int, status entities.AppointmentStatus) entities.Appointment {
	return entities.Appointment{
		ID:              id,
		ClinicID:        clinicID,
		PatientID:       1,
		AppointmentTime: time.Date(2024, 5, 1, 9, id, 0, 0, time.UTC),
		Status:          status,
	}
}

// springfieldStore has clinic 1 about 2.2 km and clinic 2 about 10 km from
// the Springfield centre; clinic 3 offers Pfizer but has no scheduled slots.
func springfieldStore() *fakeStore {
	return &fakeStore{
		clinics: []entities.Clinic{
			{ID: 1, Name: "Clinic A", City: "Springfield", Latitude: 39.80, Longitude: -89.64, Vaccines: []string{"Pfizer", "Moderna"}},
			{ID: 2, Name: "Clinic B", City: "Springfield", Latitude: 39.70, Longitude: -89.60, Vaccines: []string{"Pfizer"}},
			{ID: 3, Name: "Clinic C", City: "Springfield", Latitude: 39.78, Longitude: -89.65, Vaccines: []string{"Pfizer"}},
		},
		appointments: map[int][]entities.Appointment{
			1: {appt(1, 1, entities.StatusScheduled), appt(2, 1, entities.StatusScheduled)},
			2: {appt(3, 2, entities.StatusScheduled), appt(4, 2, entities.StatusCanceled)},
			3: {appt(5, 3, entities.StatusCompleted)},
		},
	}
}

func springfieldGeocoder() fakeGeocoder {
	return fakeGeocoder{"springfield": {Latitude: 39.7817, Longitude: -89.6501}}
}
