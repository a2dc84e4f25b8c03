package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

// User is a registered student or teacher, keyed by the school USN.
type User struct {
	USN          string     `json:"usn"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsTeacher    bool       `json:"is_teacher"`
	FaceEnrolled bool       `json:"face_enrolled"`
	EnrolledAt   *time.Time `json:"enrolled_at,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `usn, name, email, password_hash, is_teacher, face_enrolled, enrolled_at, photo_url, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.USN, &u.Name, &u.Email, &u.PasswordHash, &u.IsTeacher, &u.FaceEnrolled, &u.EnrolledAt, &u.PhotoURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (usn, name, email, password_hash, is_teacher)
		VALUES ($1, $2, $3, $4, $5)
	`, u.USN, u.Name, u.Email, u.PasswordHash, u.IsTeacher)
	return err
}

// ByUSN returns the user with the given school identifier.
func (r *Repository) ByUSN(ctx context.Context, usn string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE usn = $1`, usn))
}

// ByName returns the user with the given display name.
func (r *Repository) ByName(ctx context.Context, name string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1`, name))
}

// ByEmail returns the user with the given email.
func (r *Repository) ByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// UpdatePasswordHash replaces a user's stored password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, usn, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE usn = $1`, usn, hash)
	return err
}

// SetFaceEnrolled marks a user as enrolled with the face model.
func (r *Repository) SetFaceEnrolled(ctx context.Context, usn string, enrolled bool) error {
	var enrolledAt interface{}
	if enrolled {
		enrolledAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET face_enrolled = $2, enrolled_at = $3 WHERE usn = $1
	`, usn, enrolled, enrolledAt)
	return err
}

// SetPhotoURL stores the uploaded reference photo URL.
func (r *Repository) SetPhotoURL(ctx context.Context, usn, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET photo_url = $2 WHERE usn = $1`, usn, url)
	return err
}

// ListStudents returns all non-teacher users.
func (r *Repository) ListStudents(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE NOT is_teacher ORDER BY usn
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.USN, &u.Name, &u.Email, &u.PasswordHash, &u.IsTeacher, &u.FaceEnrolled, &u.EnrolledAt, &u.PhotoURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountStudents returns the number of non-teacher users.
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE NOT is_teacher`).Scan(&n)
	return n, err
}
