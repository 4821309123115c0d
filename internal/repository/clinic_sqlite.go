package repository

import (
	"context"
	"database/sql"
	"fmt"
	"signetic_scheduler/internal/entities"
	"time"
)

// SQLiteClinicRepository is the SQLite flavour of ClinicRepository.
type SQLiteClinicRepository struct {
	db *sql.DB
}

func NewSQLiteClinicRepository(db *sql.DB) *SQLiteClinicRepository {
	return &SQLiteClinicRepository{db: db}
}

func (r *SQLiteClinicRepository) ClinicsOfferingVaccine(ctx context.Context, vaccineName string) ([]entities.Clinic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.address, c.city, c.state, c.zip_code, c.latitude, c.longitude
		FROM clinics c
		WHERE EXISTS (SELECT 1 FROM vaccines v WHERE v.clinic_id = c.id AND v.name = ?)
		ORDER BY c.id
	`, vaccineName)
	if err != nil {
		return nil, fmt.Errorf("query clinics: %w", err)
	}

	clinics := []entities.Clinic{}
	for rows.Next() {
		var c entities.Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.State, &c.ZipCode, &c.Latitude, &c.Longitude); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		clinics = append(clinics, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Single connection pool: vaccine names are loaded after the clinic cursor is closed.
	for i := range clinics {
		names, err := r.vaccineNames(ctx, clinics[i].ID)
		if err != nil {
			return nil, err
		}
		clinics[i].Vaccines = names
	}
	return clinics, nil
}

func (r *SQLiteClinicRepository) vaccineNames(ctx context.Context, clinicID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM vaccines WHERE clinic_id = ? ORDER BY id`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("query vaccines: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan vaccine: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *SQLiteClinicRepository) AppointmentsByStatus(ctx context.Context, clinicID int, status entities.AppointmentStatus) ([]entities.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, clinic_id, patient_id, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE clinic_id = ? AND status = ?
		ORDER BY appointment_time, id
	`, clinicID, string(status))
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	appointments := []entities.Appointment{}
	for rows.Next() {
		var a entities.Appointment
		var status string
		var apptTime, createdAt, updatedAt interface{}
		if err := rows.Scan(&a.ID, &a.ClinicID, &a.PatientID, &apptTime, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Status = entities.AppointmentStatus(status)
		if a.AppointmentTime, err = sqliteTime(apptTime); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = sqliteTime(createdAt); err != nil {
			return nil, err
		}
		if a.UpdatedAt, err = sqliteTime(updatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// sqliteTime accepts the driver's parsed time or one of SQLite's text layouts.
func sqliteTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range sqliteTimeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", t)
	case []byte:
		return sqliteTime(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}
