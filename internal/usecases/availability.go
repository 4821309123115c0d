package usecases

import (
	"context"
	"fmt"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/interfaces"

	"go.uber.org/zap"
)

// AvailabilityService finds clinics with open appointments near a location.
type AvailabilityService struct {
	store    interfaces.ClinicStore
	geocoder interfaces.Geocoder
	logger   *zap.Logger
}

func NewAvailabilityService(store interfaces.ClinicStore, geocoder interfaces.Geocoder, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
	}
}

// FindAvailableClinics returns clinics offering vaccineType that have at least one
// scheduled appointment, nearest first. An unknown location yields an empty result.
func (s *AvailabilityService) FindAvailableClinics(ctx context.Context, vaccineType, location string) ([]entities.ClinicAvailability, error) {
	origin, ok, err := s.geocoder.Lookup(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	if !ok {
		s.logger.Debug("location not in geocoder table", zap.String("location", location))
		return []entities.ClinicAvailability{}, nil
	}

	clinics, err := s.store.ClinicsOfferingVaccine(ctx, vaccineType)
	if err != nil {
		return nil, fmt.Errorf("load clinics offering %s: %w", vaccineType, err)
	}

	results := []entities.ClinicAvailability{}
	for _, clinic := range clinics {
		appointments, err := s.store.AppointmentsByStatus(ctx, clinic.ID, entities.StatusScheduled)
		if err != nil {
			return nil, fmt.Errorf("load appointments for clinic %d: %w", clinic.ID, err)
		}
		if len(appointments) == 0 {
			continue
		}
		if err := clinic.Validate(); err != nil {
			s.logger.Warn("skipping clinic with invalid coordinates", zap.Error(err))
			continue
		}
		results = append(results, entities.ClinicAvailability{
			Clinic:       clinic,
			Appointments: appointments,
			Distance:     HaversineKm(origin, clinic.Coordinates()),
		})
	}

	RankByDistance(results)
	return results, nil
}
