package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository archives accepted attendance records in Postgres. It backs the
// worker, not the verification pipeline: session and replay state never touch
// the database.
//
// Expected table:
//
//	attendance_records (
//	    id TEXT PRIMARY KEY,
//	    student_id TEXT NOT NULL,
//	    session_id TEXT NOT NULL,
//	    event_type TEXT NOT NULL,
//	    device_id TEXT NOT NULL,
//	    ip_address TEXT,
//	    lat DOUBLE PRECISION NOT NULL,
//	    lon DOUBLE PRECISION NOT NULL,
//	    confirmed_at TIMESTAMPTZ NOT NULL,
//	    UNIQUE (session_id, device_id)
//	)
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertRecord archives a record. Re-delivery of the same (session, device)
// pair is a no-op, matching the pipeline's at-most-once guarantee.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, session_id, event_type, device_id, ip_address, lat, lon, confirmed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (session_id, device_id) DO NOTHING
	`, rec.ID, rec.StudentID, rec.SessionID, string(rec.EventType), rec.DeviceID, rec.IPAddress,
		rec.Location.Lat, rec.Location.Lon, rec.ConfirmedAt)
	return err
}

// GetRecord returns a single archived record by id, or nil when absent.
func (r *Repository) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, session_id, event_type, device_id, ip_address, lat, lon, confirmed_at
		FROM attendance_records WHERE id = $1
	`, id)
	var rec Record
	var ip sql.NullString
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.SessionID, &rec.EventType, &rec.DeviceID,
		&ip, &rec.Location.Lat, &rec.Location.Lon, &rec.ConfirmedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.IPAddress = ip.String
	return &rec, nil
}

// ListRecords returns archived records with basic filters, newest first.
func (r *Repository) ListRecords(ctx context.Context, sessionID, deviceID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, student_id, session_id, event_type, device_id, ip_address, lat, lon, confirmed_at FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if sessionID != "" {
		clauses = append(clauses, "session_id = $"+itoa(len(args)+1))
		args = append(args, sessionID)
	}
	if deviceID != "" {
		clauses = append(clauses, "device_id = $"+itoa(len(args)+1))
		args = append(args, deviceID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY confirmed_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		var ip sql.NullString
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.SessionID, &rec.EventType, &rec.DeviceID,
			&ip, &rec.Location.Lat, &rec.Location.Lon, &rec.ConfirmedAt); err != nil {
			return nil, err
		}
		rec.IPAddress = ip.String
		res = append(res, rec)
	}
	return res, rows.Err()
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
