package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrClassroomNotFound is returned for an unknown classroom id.
var ErrClassroomNotFound = errors.New("classroom not found")

// Repository persists the attendance ledger in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one record to the ledger.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records
			(id, user_usn, session_id, classroom_id, subject, qr_match, location_match, face_match, marked_by_teacher, marked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rec.ID, rec.UserUSN, rec.SessionID, rec.ClassroomID, rec.Subject,
		rec.QRMatch, rec.LocationMatch, rec.FaceMatch, rec.MarkedByTeacher, rec.MarkedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

const recordColumns = `id, user_usn, session_id, classroom_id, subject, qr_match, location_match, face_match, marked_by_teacher, marked_at`

// ListByUser returns all records for a student, newest first.
func (r *Repository) ListByUser(ctx context.Context, usn string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE user_usn = $1
		ORDER BY marked_at DESC
	`, usn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserUSN, &rec.SessionID, &rec.ClassroomID, &rec.Subject,
			&rec.QRMatch, &rec.LocationMatch, &rec.FaceMatch, &rec.MarkedByTeacher, &rec.MarkedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ListBySession returns records scoped exactly to one session, joined with
// the student names, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]SessionEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.user_usn, a.session_id, a.classroom_id, a.subject,
		       a.qr_match, a.location_match, a.face_match, a.marked_by_teacher, a.marked_at,
		       u.name
		FROM attendance_records a
		JOIN users u ON u.usn = a.user_usn
		WHERE a.session_id = $1
		ORDER BY a.marked_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		if err := rows.Scan(&e.ID, &e.UserUSN, &e.SessionID, &e.ClassroomID, &e.Subject,
			&e.QRMatch, &e.LocationMatch, &e.FaceMatch, &e.MarkedByTeacher, &e.MarkedAt,
			&e.StudentName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetClassroom returns a classroom by id.
func (r *Repository) GetClassroom(ctx context.Context, id int) (Classroom, error) {
	var c Classroom
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, lat, lon FROM classrooms WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Lat, &c.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return Classroom{}, ErrClassroomNotFound
	}
	if err != nil {
		return Classroom{}, err
	}
	return c, nil
}
