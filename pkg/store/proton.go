package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/timeplus-io/proton-go-driver/v2"
	"github.com/timeplus-io/proton-go-driver/v2/lib/driver"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/models"
)

// ProtonStore keeps readings in a Timeplus Proton stream
type ProtonStore struct {
	conn   driver.Conn
	stream string
}

// OpenProton connects to Proton over the native protocol and pings it once
func OpenProton(ctx context.Context, cfg config.DatabaseConfig) (*ProtonStore, error) {
	// Strip protocol if present, Proton's native port doesn't speak HTTP
	host := strings.TrimPrefix(cfg.Host, "http://")
	host = strings.TrimPrefix(host, "https://")
	address := fmt.Sprintf("%s:%d", host, cfg.Port)

	logrus.Infof("Connecting to Timeplus Proton at %s (database: %s)", address, cfg.Name)

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	conn, err := proton.Open(&proton.Options{
		Addr: []string{address},
		Auth: proton.Auth{
			Database: cfg.Name,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout:  dialTimeout,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Compression: &proton.Compression{
			Method: proton.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open connection to Proton: %v", ErrConnection, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to ping Proton: %v", ErrConnection, err)
	}

	logrus.Infof("Connected to Proton (stream: %s)", cfg.Table)

	return &ProtonStore{conn: conn, stream: cfg.Table}, nil
}

// Ping checks that the connection is still usable
func (p *ProtonStore) Ping(ctx context.Context) error {
	if err := p.conn.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// CreateTable creates the readings stream if it does not exist
func (p *ProtonStore) CreateTable(ctx context.Context) error {
	schema, err := ReadingSchema(config.DriverProton)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE STREAM IF NOT EXISTS %s (%s)", quoteIdent(p.stream), columnDefinitions(schema, false))
	if err := p.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: failed to create stream '%s': %v", ErrQuery, p.stream, err)
	}
	return nil
}

// InsertReading appends one reading. Streams have no unique key, so
// duplicate ids are accepted here.
func (p *ProtonStore) InsertReading(ctx context.Context, reading models.Reading) error {
	if err := p.conn.Exec(ctx, insertQuery(p.stream), reading.Values()...); err != nil {
		return fmt.Errorf("%w: insert reading %d into stream '%s': %v", ErrQuery, reading.ID, p.stream, err)
	}
	return nil
}

// RecentReadings returns up to limit readings, newest first. The table()
// wrapper turns the streaming read into a bounded historical query.
func (p *ProtonStore) RecentReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	query := fmt.Sprintf("SELECT * FROM table(%s) ORDER BY %s DESC LIMIT %d",
		quoteIdent(p.stream), quoteIdent(models.ColumnTime), limit)

	rows, err := p.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: select recent readings: %v", ErrQuery, err)
	}
	defer rows.Close()

	// Get column names and types
	columnNames := rows.Columns()
	columnTypes := rows.ColumnTypes()

	readings := make([]models.Reading, 0, limit)
	for rows.Next() {
		// Create a slice for scanning, matching column types
		scanArgs := make([]interface{}, len(columnNames))
		for i, ct := range columnTypes {
			scanArgs[i] = reflect.New(ct.ScanType()).Interface()
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %v", ErrQuery, err)
		}

		rowMap := make(map[string]interface{}, len(columnNames))
		for i, name := range columnNames {
			rowMap[name] = reflect.ValueOf(scanArgs[i]).Elem().Interface()
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

	logrus.Debugf("Fetched %d readings from stream %s", len(readings), p.stream)
	return readings, nil
}

// Close closes the native connection
func (p *ProtonStore) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
