package identity

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Directory is the read surface other components need from identity.
type Directory interface {
	ByUSN(ctx context.Context, usn string) (*User, error)
	ByName(ctx context.Context, name string) (*User, error)
	CountStudents(ctx context.Context) (int, error)
}

// Service handles registration and login.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by the user repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, usn, name, email, password string, isTeacher bool) (*User, error) {
	if usn == "" || name == "" || email == "" || password == "" {
		return nil, errors.New("usn, name, email and password required")
	}
	if _, err := s.repo.ByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := User{USN: usn, Name: name, Email: email, PasswordHash: string(hash), IsTeacher: isTeacher}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.ByUSN(ctx, usn)
}

// Login checks credentials. Accounts imported with a plaintext password are
// accepted once and their stored password upgraded to bcrypt in place.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.ByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if isBcrypt(u.PasswordHash) {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return u, nil
	}

	// legacy plaintext row
	if u.PasswordHash != password {
		return nil, ErrInvalidCredentials
	}
	if hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); herr == nil {
		_ = s.repo.UpdatePasswordHash(ctx, u.USN, string(hash))
	}
	return u, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
