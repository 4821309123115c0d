package repository

import (
	"context"
	"fmt"
	"signetic_scheduler/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClinicRepository reads clinics, their vaccines and appointments from Postgres.
type ClinicRepository struct {
	db *pgxpool.Pool
}

func NewClinicRepository(db *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{db: db}
}

// ClinicsOfferingVaccine joins clinics to vaccines by name. Each clinic appears
// once, ordered by id, with the names of every vaccine it offers.
func (r *ClinicRepository) ClinicsOfferingVaccine(ctx context.Context, vaccineName string) ([]entities.Clinic, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.address, c.city, c.state, c.zip_code, c.latitude, c.longitude,
		       ARRAY(SELECT v2.name FROM vaccines v2 WHERE v2.clinic_id = c.id ORDER BY v2.id) AS vaccines
		FROM clinics c
		WHERE EXISTS (SELECT 1 FROM vaccines v WHERE v.clinic_id = c.id AND v.name = $1)
		ORDER BY c.id
	`, vaccineName)
	if err != nil {
		return nil, fmt.Errorf("query clinics: %w", err)
	}
	defer rows.Close()

	clinics := []entities.Clinic{}
	for rows.Next() {
		var c entities.Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Latitude, &c.Longitude, &c.Vaccines); err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		clinics = append(clinics, c)
	}
	return clinics, rows.Err()
}

// AppointmentsByStatus returns a clinic's appointments in the given status, ordered by time.
func (r *ClinicRepository) AppointmentsByStatus(ctx context.Context, clinicID int, status entities.AppointmentStatus) ([]entities.Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, clinic_id, patient_id, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE clinic_id = $1 AND status = $2
		ORDER BY appointment_time, id
	`, clinicID, string(status))
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]entities.Appointment, error) {
	appointments := []entities.Appointment{}
	for rows.Next() {
		var a entities.Appointment
		var status string
		if err := rows.Scan(&a.ID, &a.ClinicID, &a.PatientID, &a.AppointmentTime, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Status = entities.AppointmentStatus(status)
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
