package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps metrics in a SQLite file so they survive restarts.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{conn: conn}
	if err := s.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_metrics (
		day TEXT PRIMARY KEY,
		active_trucks INTEGER NOT NULL,
		cargo_value INTEGER NOT NULL,
		on_time_rate INTEGER NOT NULL,
		penalty_cost INTEGER NOT NULL,
		solution_cost INTEGER NOT NULL,
		carbon_credits INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, day string) (Metrics, error) {
	query := `SELECT day, active_trucks, cargo_value, on_time_rate, penalty_cost, solution_cost, carbon_credits
		FROM daily_metrics WHERE day = ?`
	var m Metrics
	err := s.conn.QueryRowContext(ctx, query, day).Scan(
		&m.Date, &m.ActiveTrucks, &m.CargoValue, &m.OnTimeRate,
		&m.PenaltyCost, &m.SolutionCost, &m.CarbonCredits)
	if errors.Is(err, sql.ErrNoRows) {
		return Metrics{}, ErrNotFound
	}
	if err != nil {
		return Metrics{}, err
	}
	return withNet(m), nil
}

// Create implements Store. An existing row for the day wins.
func (s *SQLiteStore) Create(ctx context.Context, m Metrics) (Metrics, error) {
	query := `INSERT OR IGNORE INTO daily_metrics
		(day, active_trucks, cargo_value, on_time_rate, penalty_cost, solution_cost, carbon_credits)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.conn.ExecContext(ctx, query,
		m.Date, m.ActiveTrucks, m.CargoValue, m.OnTimeRate,
		m.PenaltyCost, m.SolutionCost, m.CarbonCredits); err != nil {
		return Metrics{}, err
	}
	return s.Get(ctx, m.Date)
}
