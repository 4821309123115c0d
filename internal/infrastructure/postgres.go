package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string, logger *zap.Logger) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}
	if err := client.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("connected to postgres", zap.Int32("max_conns", config.MaxConns))

	return client, nil
}

// EnsureSchema creates the four scheduling tables when they are missing.
// It does not alter existing tables.
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	statements := []struct {
		name string
		ddl  string
	}{
		{"clinics", `
			CREATE TABLE IF NOT EXISTS clinics (
				id SERIAL PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				address VARCHAR(255) NOT NULL,
				city VARCHAR(100) NOT NULL,
				state VARCHAR(50) NOT NULL,
				zip_code VARCHAR(20) NOT NULL,
				latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
				longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180)
			);
		`},
		{"vaccines", `
			CREATE TABLE IF NOT EXISTS vaccines (
				id SERIAL PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				clinic_id INT NOT NULL REFERENCES clinics(id)
			);
		`},
		{"patients", `
			CREATE TABLE IF NOT EXISTS patients (
				id SERIAL PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL
			);
		`},
		{"appointments", `
			CREATE TABLE IF NOT EXISTS appointments (
				id SERIAL PRIMARY KEY,
				clinic_id INT NOT NULL REFERENCES clinics(id),
				patient_id INT NOT NULL REFERENCES patients(id),
				appointment_time TIMESTAMPTZ NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`},
		{"vaccines index", `CREATE INDEX IF NOT EXISTS idx_vaccines_name ON vaccines (name, clinic_id);`},
		{"appointments index", `CREATE INDEX IF NOT EXISTS idx_appointments_clinic_status ON appointments (clinic_id, status);`},
	}

	for _, stmt := range statements {
		if _, err := p.Pool.Exec(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
	}
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
