package face

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

type fakeMatcher struct {
	cmp Comparison
	err error
}

func (m *fakeMatcher) Compare(ctx context.Context, ref, probe []byte) (Comparison, error) {
	return m.cmp, m.err
}

func TestVerifyNoReference(t *testing.T) {
	svc := NewService(NewMemStore(), &fakeMatcher{}, false)

	// regardless of probe content
	for _, probe := range [][]byte{nil, []byte("x"), []byte("not an image at all")} {
		res, err := svc.Verify(context.Background(), "1MS21CS001", probe)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !res.Verified || res.Confidence != 0.90 || res.Policy != PolicyNoReference {
			t.Errorf("Verify() = %+v, want verified with 0.90 no-reference fallback", res)
		}
	}
}

func TestVerifyCompared(t *testing.T) {
	tests := []struct {
		name           string
		cmp            Comparison
		wantVerified   bool
		wantConfidence float64
	}{
		{
			name:           "match",
			cmp:            Comparison{Verified: true, Distance: 0.2, Threshold: 0.5},
			wantVerified:   true,
			wantConfidence: 0.6,
		},
		{
			name:           "no match",
			cmp:            Comparison{Verified: false, Distance: 0.8, Threshold: 0.5},
			wantVerified:   false,
			wantConfidence: 1 - 0.8/0.5,
		},
		{
			name:           "zero threshold",
			cmp:            Comparison{Verified: true, Distance: 0.2, Threshold: 0},
			wantVerified:   true,
			wantConfidence: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := NewMemStore()
			if err := refs.Save("1MS21CS001", []byte("ref")); err != nil {
				t.Fatal(err)
			}
			svc := NewService(refs, &fakeMatcher{cmp: tt.cmp}, false)

			res, err := svc.Verify(context.Background(), "1MS21CS001", []byte("probe"))
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if res.Verified != tt.wantVerified {
				t.Errorf("Verified = %v, want %v", res.Verified, tt.wantVerified)
			}
			if math.Abs(res.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Confidence = %g, want %g", res.Confidence, tt.wantConfidence)
			}
			if res.Policy != PolicyCompared || res.Distance == nil || res.Threshold == nil {
				t.Errorf("Result = %+v, want compared policy with distance/threshold", res)
			}
		})
	}
}

func TestVerifyModelErrorFailOpen(t *testing.T) {
	refs := NewMemStore()
	if err := refs.Save("1MS21CS001", []byte("ref")); err != nil {
		t.Fatal(err)
	}
	modelErr := errors.New("model exploded")
	svc := NewService(refs, &fakeMatcher{err: modelErr}, false)

	res, err := svc.Verify(context.Background(), "1MS21CS001", []byte("probe"))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !res.Verified || res.Confidence != 0.85 || res.Policy != PolicyFailOpen {
		t.Errorf("Verify() = %+v, want fail-open approval with 0.85", res)
	}
	if !strings.Contains(res.Message, "model exploded") {
		t.Errorf("Message = %q, want embedded cause", res.Message)
	}
}

func TestVerifyModelErrorStrict(t *testing.T) {
	refs := NewMemStore()
	if err := refs.Save("1MS21CS001", []byte("ref")); err != nil {
		t.Fatal(err)
	}
	modelErr := errors.New("model exploded")
	svc := NewService(refs, &fakeMatcher{err: modelErr}, true)

	if _, err := svc.Verify(context.Background(), "1MS21CS001", []byte("probe")); !errors.Is(err, modelErr) {
		t.Errorf("strict Verify() error = %v, want wrapped model error", err)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	refs := NewMemStore()
	svc := NewService(refs, &fakeMatcher{}, false)

	if err := svc.Register("1MS21CS001", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Register("1MS21CS001", []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, err := refs.Load("1MS21CS001")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("reference = %q, want latest registration", got)
	}

	if err := svc.Register("1MS21CS001", nil); err == nil {
		t.Error("Register(empty) expected error")
	}
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "raw base64", in: "aGVsbG8=", want: "hello"},
		{name: "data url", in: "data:image/jpeg;base64,aGVsbG8=", want: "hello"},
		{name: "invalid", in: "!!!", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeImage(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeImage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && string(got) != tt.want {
				t.Errorf("DecodeImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiskStore(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("1MS21CS001"); !errors.Is(err, ErrNoReference) {
		t.Errorf("Load(missing) error = %v, want ErrNoReference", err)
	}
	if err := store.Save("1MS21CS001", []byte("img")); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load("1MS21CS001")
	if err != nil || string(got) != "img" {
		t.Errorf("Load() = %q, %v", got, err)
	}
}
