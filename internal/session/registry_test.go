package session

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCreateValidate(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	s := r.Create("CS101", "T1")
	if s.ID == "" {
		t.Fatal("empty session id")
	}

	got, err := r.Validate(s.ID)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.Subject != "CS101" || got.TeacherID != "T1" {
		t.Errorf("Validate() = %+v", got)
	}

	cur, ok := r.CurrentActive()
	if !ok || cur.ID != s.ID {
		t.Errorf("CurrentActive() = %+v, %v; want session %s", cur, ok, s.ID)
	}
}

func TestValidateUnknown(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	if _, err := r.Validate("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Validate(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStop(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	s := r.Create("CS101", "T1")

	if err := r.Stop(s.ID); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, err := r.Validate(s.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Validate(stopped) error = %v, want ErrExpired", err)
	}
	if _, ok := r.CurrentActive(); ok {
		t.Error("CurrentActive() reports a stopped session")
	}
	// re-stop is allowed
	if err := r.Stop(s.ID); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if err := r.Stop("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stop(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	s := r.Create("CS101", "T1")

	now = now.Add(9 * time.Minute)
	if _, err := r.Validate(s.ID); err != nil {
		t.Fatalf("Validate() before TTL error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := r.Validate(s.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Validate() after TTL error = %v, want ErrExpired", err)
	}
	if _, ok := r.CurrentActive(); ok {
		t.Error("CurrentActive() reports an expired session")
	}
}

func TestCurrentActiveLastCreatedWins(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Create("CS101", "T1")
	now = now.Add(time.Second)
	second := r.Create("CS102", "T2")

	cur, ok := r.CurrentActive()
	if !ok || cur.ID != second.ID {
		t.Errorf("CurrentActive() = %+v, want most recent session %s", cur, second.ID)
	}

	if err := r.Stop(second.ID); err != nil {
		t.Fatal(err)
	}
	cur, ok = r.CurrentActive()
	if !ok || cur.Subject != "CS101" {
		t.Errorf("CurrentActive() after stop = %+v, want CS101", cur)
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := r.Create("CS101", "T1")
			if _, err := r.Validate(s.ID); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			_, _ = r.CurrentActive()
			if err := r.Stop(s.ID); err != nil {
				t.Errorf("Stop() error = %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestCreateUniqueIDs(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := r.Create("CS101", "T1")
		if seen[s.ID] {
			t.Fatalf("duplicate session id %s", s.ID)
		}
		seen[s.ID] = true
	}
}
