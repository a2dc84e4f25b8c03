package face

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoReference indicates no reference image is on file for a user.
var ErrNoReference = errors.New("no reference image")

// RefStore keeps one current reference image per user, keyed by USN.
// Saving again overwrites the previous reference.
type RefStore interface {
	Save(usn string, img []byte) error
	Load(usn string) ([]byte, error)
}

// DiskStore stores reference images as <dir>/<usn>.jpg.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the backing directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create face data dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(usn string) string {
	return filepath.Join(s.dir, usn+".jpg")
}

// Save writes the reference image, replacing any prior one.
func (s *DiskStore) Save(usn string, img []byte) error {
	if usn == "" {
		return errors.New("usn required")
	}
	return os.WriteFile(s.path(usn), img, 0o644)
}

// Load returns the reference image or ErrNoReference.
func (s *DiskStore) Load(usn string) ([]byte, error) {
	data, err := os.ReadFile(s.path(usn))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoReference
		}
		return nil, err
	}
	return data, nil
}

// MemStore is an in-memory RefStore for tests.
type MemStore struct {
	mu   sync.Mutex
	imgs map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{imgs: make(map[string][]byte)}
}

// Save stores the image under usn.
func (s *MemStore) Save(usn string, img []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imgs[usn] = append([]byte(nil), img...)
	return nil
}

// Load returns the stored image or ErrNoReference.
func (s *MemStore) Load(usn string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.imgs[usn]
	if !ok {
		return nil, ErrNoReference
	}
	return img, nil
}
