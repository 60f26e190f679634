package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository is the record store behind the registry.
type Repository interface {
	// Create inserts a new sensor. Returns ErrSensorExists on an ID clash.
	Create(ctx context.Context, s *Sensor) error

	// Update overwrites every attribute of an existing sensor.
	// Returns ErrSensorNotFound if the sensor does not exist.
	Update(ctx context.Context, s *Sensor) error

	// GetByID returns ErrSensorNotFound if the sensor does not exist.
	GetByID(ctx context.Context, id string) (*Sensor, error)

	// List returns one page of sensors and the total number of sensors.
	// The request is expected to be normalised already.
	List(ctx context.Context, req PageRequest) ([]Sensor, int, error)

	// Delete returns ErrSensorNotFound if the sensor does not exist.
	Delete(ctx context.Context, id string) error
}

// timeLayout keeps a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const selectColumns = `id, name, ip, location, protocol, model, enabled, created_at, updated_at`

// SQLiteRepository implements Repository on the sensors table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts s, stamping CreatedAt (if unset) and UpdatedAt.
func (r *SQLiteRepository) Create(ctx context.Context, s *Sensor) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sensors (id, name, ip, location, protocol, model, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.IP, s.Location, s.Protocol, s.Model, boolToInt(s.Enabled),
		s.CreatedAt.UTC().Format(timeLayout), s.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrSensorExists
		}
		return fmt.Errorf("inserting sensor: %w", err)
	}
	return nil
}

// Update overwrites the stored attributes of s and refreshes UpdatedAt.
func (r *SQLiteRepository) Update(ctx context.Context, s *Sensor) error {
	s.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE sensors SET
			name = ?, ip = ?, location = ?, protocol = ?, model = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.IP, s.Location, s.Protocol, s.Model, boolToInt(s.Enabled),
		s.UpdatedAt.Format(timeLayout), s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sensor: %w", err)
	}
	return requireOneRow(result)
}

// GetByID retrieves a sensor by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Sensor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM sensors WHERE id = ?`, id)

	s, err := scanSensor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("querying sensor by id: %w", err)
	}
	return s, nil
}

// List reads one page in the requested order. Insertion order (rowid) is
// the storage order and the final tiebreaker, so consecutive pages never
// overlap or skip rows while the table is unchanged.
func (r *SQLiteRepository) List(ctx context.Context, req PageRequest) ([]Sensor, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sensors: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM sensors ORDER BY ` + orderClause(req.Sort) + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, req.Size, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	sensors := make([]Sensor, 0, req.Size)
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, total, nil
}

// Delete removes a sensor by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sensors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sensor: %w", err)
	}
	return requireOneRow(result)
}

// orderClause builds ORDER BY from whitelisted columns only.
func orderClause(orders []Order) string {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		col, ok := sortColumns[o.Field]
		if !ok {
			continue
		}
		if o.Desc {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}
	parts = append(parts, "rowid ASC")
	return strings.Join(parts, ", ")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSensor(row rowScanner) (*Sensor, error) {
	var s Sensor
	var enabled int
	var createdAt, updatedAt string

	if err := row.Scan(&s.ID, &s.Name, &s.IP, &s.Location, &s.Protocol, &s.Model,
		&enabled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Enabled = enabled != 0

	var err error
	if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if s.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	return &s, nil
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
