package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"weatheralert/internal/metrics"
	"weatheralert/internal/models"

	_ "github.com/go-sql-driver/mysql"
)

// Metric types written for each archived hourly reading.
const (
	MetricTemperature = "temperature"
	MetricWindSpeed   = "wind_speed"
	MetricWeatherCode = "weather_code"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func (db *DB) initSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS metrics (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		location VARCHAR(255) NOT NULL DEFAULT '',
		timestamp DATETIME(6) NOT NULL,
		metric_type VARCHAR(100) NOT NULL,
		value DOUBLE NOT NULL,
		UNIQUE KEY uq_metrics_reading (location, timestamp, metric_type),
		INDEX idx_metrics_timestamp (timestamp)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	if _, err := db.conn.Exec(stmt); err != nil {
		return fmt.Errorf("failed to execute schema statement: %w", err)
	}
	return nil
}

// ReadingMetrics flattens readings into one row per archived value.
func ReadingMetrics(location string, readings []models.HourlyReading) []models.Metric {
	rows := make([]models.Metric, 0, len(readings)*3)
	for _, r := range readings {
		ts := r.Time().UTC()
		rows = append(rows,
			models.Metric{Location: location, Timestamp: ts, MetricType: MetricTemperature, Value: r.Temperature},
			models.Metric{Location: location, Timestamp: ts, MetricType: MetricWindSpeed, Value: r.WindSpeed},
			models.Metric{Location: location, Timestamp: ts, MetricType: MetricWeatherCode, Value: float64(r.WeatherCode)},
		)
	}
	return rows
}

// StoreReadings archives the readings in one transaction. A later forecast for
// the same hour replaces the earlier value.
func (db *DB) StoreReadings(ctx context.Context, location string, readings []models.HourlyReading) error {
	if len(readings) == 0 {
		log.Printf("No readings to archive for %s", location)
		return nil
	}

	defer func() {
		stats := db.conn.Stats()
		metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
	}()

	queryStart := time.Now()
	err := db.storeMetrics(ctx, ReadingMetrics(location, readings))
	metrics.RecordDBQuery("INSERT", "metrics", time.Since(queryStart), err)
	if err != nil {
		return err
	}

	log.Printf("✓ Archived %d readings for %s", len(readings), location)
	return nil
}

func (db *DB) storeMetrics(ctx context.Context, rows []models.Metric) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO metrics (location, timestamp, metric_type, value) VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range rows {
		if _, err := stmt.ExecContext(ctx, m.Location, m.Timestamp, m.MetricType, m.Value); err != nil {
			return fmt.Errorf("failed to insert %s at %s: %w", m.MetricType, m.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
