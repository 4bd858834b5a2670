package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"

	_ "modernc.org/sqlite"
)

// SQLStore keeps readings in a MySQL or SQLite table through database/sql
type SQLStore struct {
	db     *sql.DB
	driver string
	table  string
}

// OpenSQL opens a single-connection pool for cfg.Driver and pings it
func OpenSQL(ctx context.Context, cfg config.DatabaseConfig) (*SQLStore, error) {
	driverName, dsn, err := sqlDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, cfg.Driver, err)
	}

	// Both programs issue one statement at a time over one connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrConnection, cfg.Driver, err)
	}

	logrus.Infof("Connected to %s store (table: %s)", cfg.Driver, cfg.Table)

	return &SQLStore{db: db, driver: cfg.Driver, table: cfg.Table}, nil
}

func sqlDSN(cfg config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Address()
		mc.DBName = cfg.Name
		mc.Timeout = cfg.DialTimeout
		return "mysql", mc.FormatDSN(), nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return "", "", fmt.Errorf("create db directory: %w", err)
		}
		return "sqlite", fmt.Sprintf("file:%s", cfg.Path), nil
	default:
		return "", "", fmt.Errorf("driver %q is not a database/sql backend", cfg.Driver)
	}
}

// Ping checks that the connection is still usable
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// CreateTable creates the readings table if it does not exist
func (s *SQLStore) CreateTable(ctx context.Context) error {
	schema, err := ReadingSchema(s.driver)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(s.table), columnDefinitions(schema, true))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: create table %s: %v", ErrQuery, s.table, err)
	}
	return nil
}

// InsertReading appends one reading. A duplicate id is rejected by the
// primary key and reported as ErrQuery.
func (s *SQLStore) InsertReading(ctx context.Context, reading models.Reading) error {
	if _, err := s.db.ExecContext(ctx, insertQuery(s.table), reading.Values()...); err != nil {
		return fmt.Errorf("%w: insert reading %d: %v", ErrQuery, reading.ID, err)
	}
	return nil
}

// RecentReadings returns up to limit readings, newest first
func (s *SQLStore) RecentReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT ?", quoteIdent(s.table), quoteIdent(models.ColumnTime))
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: select recent readings: %v", ErrQuery, err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: read columns: %v", ErrQuery, err)
	}

	readings := make([]models.Reading, 0, limit)
	for rows.Next() {
		values := make([]interface{}, len(columnNames))
		scanArgs := make([]interface{}, len(columnNames))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrQuery, err)
		}

		rowMap := make(map[string]interface{}, len(columnNames))
		for i, name := range columnNames {
			rowMap[name] = values[i]
		}
		reading, err := decodeReading(rowMap)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error during row iteration: %v", ErrQuery, err)
	}

	return readings, nil
}

// Close releases the underlying database handle
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
