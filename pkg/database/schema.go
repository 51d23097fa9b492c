package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the database schema for clinic records
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	tables := []string{
		createUsersTable,
		createPatientsTable,
		createAppointmentsTable,
		createAlertsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createAppointmentsIndexes,
		createAlertsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// SeedUser is a principal provisioned on first run
type SeedUser struct {
	Username string
	Password string
	Role     string
}

// SeedUsers inserts the given principals, skipping any username that
// already exists
func (db *DB) SeedUsers(ctx context.Context, users []SeedUser) error {
	query := `INSERT OR IGNORE INTO users (username, password, role) VALUES (?, ?, ?)`

	for _, u := range users {
		if _, err := db.ExecContext(ctx, query, u.Username, u.Password, u.Role); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}

	db.logger.WithField("count", len(users)).Info("Seed users provisioned")
	return nil
}

// SQL DDL statements for table creation
const (
	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role TEXT DEFAULT 'staff'
		);`

	createPatientsTable = `
		CREATE TABLE IF NOT EXISTS patients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER,
			gender TEXT,
			phone TEXT,
			email TEXT,
			notes TEXT
		);`

	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id INTEGER NOT NULL,
			datetime TEXT NOT NULL,
			doctor TEXT,
			reason TEXT,
			status TEXT DEFAULT 'scheduled',
			FOREIGN KEY(patient_id) REFERENCES patients(id)
		);`

	createAlertsTable = `
		CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id INTEGER,
			message TEXT NOT NULL,
			severity TEXT DEFAULT 'info',
			created_at TEXT DEFAULT (datetime('now','localtime')),
			sent INTEGER DEFAULT 0,
			FOREIGN KEY(patient_id) REFERENCES patients(id)
		);`
)

// SQL DDL statements for index creation
const (
	createAppointmentsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_appointments_patient_id ON appointments(patient_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_datetime ON appointments(datetime);`

	createAlertsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_alerts_patient_id ON alerts(patient_id);
		CREATE INDEX IF NOT EXISTS idx_alerts_sent ON alerts(sent);`
)
