// Package face implements the face-verification policy: compare a probe
// image against the user's stored reference, with explicit fallback
// behavior when no reference exists or the model errors.
package face

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Policy names which branch produced a verification result.
type Policy string

const (
	// PolicyNoReference approves users with no registered reference image.
	PolicyNoReference Policy = "no_reference"
	// PolicyCompared means the model comparison actually ran.
	PolicyCompared Policy = "compared"
	// PolicyFailOpen approves despite a model error (non-strict mode only).
	PolicyFailOpen Policy = "fail_open"
)

const (
	noReferenceConfidence = 0.90
	failOpenConfidence    = 0.85
)

// Result is the outcome of one verification.
type Result struct {
	Verified   bool
	Message    string
	Confidence float64
	Distance   *float64
	Threshold  *float64
	Policy     Policy
}

// Matcher compares two images and returns the model verdict.
type Matcher interface {
	Compare(ctx context.Context, ref, probe []byte) (Comparison, error)
}

// Service applies the verification policy over a reference store and matcher.
type Service struct {
	refs    RefStore
	matcher Matcher
	strict  bool
}

// NewService creates the verification service. With strict set, model
// errors fail closed instead of approving with a lowered confidence.
func NewService(refs RefStore, matcher Matcher, strict bool) *Service {
	return &Service{refs: refs, matcher: matcher, strict: strict}
}

// Register stores img as the user's current reference, replacing any prior one.
func (s *Service) Register(usn string, img []byte) error {
	if len(img) == 0 {
		return errors.New("image required")
	}
	return s.refs.Save(usn, img)
}

// Verify checks probe against the user's stored reference.
//
// Unregistered users are approved with a fixed confidence: a deliberate
// fail-open default so students can check in before enrolling a face.
// Model errors also fail open unless strict mode is on.
func (s *Service) Verify(ctx context.Context, usn string, probe []byte) (Result, error) {
	ref, err := s.refs.Load(usn)
	if errors.Is(err, ErrNoReference) {
		return Result{
			Verified:   true,
			Message:    "face verified (no registered reference - approved by policy)",
			Confidence: noReferenceConfidence,
			Policy:     PolicyNoReference,
		}, nil
	}
	if err != nil {
		return s.failOpen(err)
	}

	cmp, err := s.matcher.Compare(ctx, ref, probe)
	if err != nil {
		return s.failOpen(err)
	}

	confidence := 0.0
	if cmp.Threshold > 0 {
		confidence = 1 - cmp.Distance/cmp.Threshold
	}
	msg := "face verification failed"
	if cmp.Verified {
		msg = "face verified successfully"
	}
	d, t := cmp.Distance, cmp.Threshold
	return Result{
		Verified:   cmp.Verified,
		Message:    msg,
		Confidence: confidence,
		Distance:   &d,
		Threshold:  &t,
		Policy:     PolicyCompared,
	}, nil
}

func (s *Service) failOpen(cause error) (Result, error) {
	if s.strict {
		return Result{}, fmt.Errorf("face verification: %w", cause)
	}
	return Result{
		Verified:   true,
		Message:    fmt.Sprintf("verification error (approved by policy): %v", cause),
		Confidence: failOpenConfidence,
		Policy:     PolicyFailOpen,
	}, nil
}

// DecodeImage decodes a base64 image payload, accepting either a raw
// base64 string or a full data URL ("data:image/jpeg;base64,...").
func DecodeImage(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	return data, nil
}
