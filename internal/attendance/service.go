package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartattend/internal/face"
	"smartattend/internal/geo"
	"smartattend/internal/identity"
	"smartattend/internal/metrics"
	"smartattend/internal/session"
)

// ErrValidation is returned for malformed requests (missing fields,
// empty override batch).
var ErrValidation = errors.New("validation error")

// DefaultClassroomID is used when a mark request does not name a classroom.
const DefaultClassroomID = 1

// Ledger is the persistence surface the orchestrator writes to and the
// read models pull from.
type Ledger interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	ListByUser(ctx context.Context, usn string) ([]Record, error)
	ListBySession(ctx context.Context, sessionID string) ([]SessionEntry, error)
	GetClassroom(ctx context.Context, id int) (Classroom, error)
}

// SessionValidator resolves a session id to its live metadata.
type SessionValidator interface {
	Validate(id string) (session.Session, error)
}

// FaceVerifier runs the face-match policy for one probe image.
type FaceVerifier interface {
	Verify(ctx context.Context, usn string, probe []byte) (face.Result, error)
}

// Service is the attendance orchestrator: it combines the session, geofence
// and face signals into a single commit-or-reject decision.
type Service struct {
	ledger      Ledger
	users       identity.Directory
	sessions    SessionValidator
	faces       FaceVerifier
	radiusM     float64
	faceTimeout time.Duration
	now         func() time.Time
}

// NewService wires the orchestrator. radiusM is the geofence radius in
// meters; faceTimeout bounds the face-model call.
func NewService(ledger Ledger, users identity.Directory, sessions SessionValidator, faces FaceVerifier, radiusM float64, faceTimeout time.Duration) *Service {
	if radiusM <= 0 {
		radiusM = geo.DefaultRadiusM
	}
	if faceTimeout <= 0 {
		faceTimeout = 10 * time.Second
	}
	return &Service{
		ledger:      ledger,
		users:       users,
		sessions:    sessions,
		faces:       faces,
		radiusM:     radiusM,
		faceTimeout: faceTimeout,
		now:         time.Now,
	}
}

// MarkRequest is one automatic check-in attempt.
type MarkRequest struct {
	SessionID   string
	StudentName string
	ClassroomID int
	Location    geo.Point
	Probe       []byte
}

// Mark runs the automatic attendance path. An unknown student or a
// stopped/expired session rejects the attempt before anything is
// persisted. The location and face signals never gate the commit: they
// are computed independently and recorded on the ledger row as-is.
func (s *Service) Mark(ctx context.Context, req MarkRequest) (Record, error) {
	user, err := s.users.ByName(ctx, req.StudentName)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			metrics.MarkRejectionsTotal.WithLabelValues("unknown_user").Inc()
		}
		return Record{}, err
	}

	sess, err := s.sessions.Validate(req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			metrics.MarkRejectionsTotal.WithLabelValues("unknown_session").Inc()
		case errors.Is(err, session.ErrExpired):
			metrics.MarkRejectionsTotal.WithLabelValues("expired_session").Inc()
		}
		return Record{}, err
	}

	classroomID := req.ClassroomID
	if classroomID == 0 {
		classroomID = DefaultClassroomID
	}
	classroom, err := s.ledger.GetClassroom(ctx, classroomID)
	if err != nil {
		return Record{}, err
	}
	locMatch := geo.WithinRadius(req.Location, geo.Point{Lat: classroom.Lat, Lon: classroom.Lon}, s.radiusM)

	fctx, cancel := context.WithTimeout(ctx, s.faceTimeout)
	defer cancel()
	faceRes, err := s.faces.Verify(fctx, user.USN, req.Probe)
	if err != nil {
		// strict mode: a model failure rejects before commit
		metrics.MarkRejectionsTotal.WithLabelValues("face_error").Inc()
		return Record{}, err
	}
	metrics.FaceVerificationsTotal.WithLabelValues(string(faceRes.Policy)).Inc()

	rec := Record{
		UserUSN:       user.USN,
		SessionID:     sess.ID,
		ClassroomID:   classroomID,
		Subject:       sess.Subject,
		QRMatch:       true, // a record only exists for a live, validated session
		LocationMatch: locMatch,
		FaceMatch:     faceRes.Verified,
		MarkedAt:      s.now().UTC(),
	}
	rec, err = s.ledger.Insert(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	metrics.MarksTotal.WithLabelValues("auto").Inc()
	return rec, nil
}

// Override marks attendance manually for a batch of students. Unknown
// USNs are skipped rather than failing the batch; only a malformed batch
// is rejected. Each committed record carries all three match flags false.
func (s *Service) Override(ctx context.Context, teacherName, subject string, usns []string) ([]string, error) {
	if teacherName == "" || subject == "" || len(usns) == 0 {
		return nil, fmt.Errorf("%w: teacher, subject and usns required", ErrValidation)
	}

	marked := make([]string, 0, len(usns))
	for _, usn := range usns {
		user, err := s.users.ByUSN(ctx, usn)
		if errors.Is(err, identity.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		_, err = s.ledger.Insert(ctx, Record{
			UserUSN:         user.USN,
			ClassroomID:     DefaultClassroomID,
			Subject:         subject,
			MarkedByTeacher: true,
			MarkedAt:        s.now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		metrics.MarksTotal.WithLabelValues("teacher_override").Inc()
		marked = append(marked, usn)
	}
	return marked, nil
}

// History is the per-student read model.
type History struct {
	Total    int      `json:"total_records"`
	Attended int      `json:"attended"`
	Records  []Record `json:"records"`
}

// HistoryFor summarizes a student's ledger. A record counts as attended
// when it is not teacher-marked or carries at least one true match signal.
// Note the asymmetry: a teacher-marked record with no signals does NOT
// count as attended. That mirrors the established formula; changing it
// would silently shift every student's attendance percentage.
func (s *Service) HistoryFor(ctx context.Context, studentName string) (History, error) {
	user, err := s.users.ByName(ctx, studentName)
	if errors.Is(err, identity.ErrNotFound) {
		return History{Records: []Record{}}, nil
	}
	if err != nil {
		return History{}, err
	}

	recs, err := s.ledger.ListByUser(ctx, user.USN)
	if err != nil {
		return History{}, err
	}

	attended := 0
	for _, r := range recs {
		if !r.MarkedByTeacher || r.QRMatch || r.LocationMatch || r.FaceMatch {
			attended++
		}
	}
	if recs == nil {
		recs = []Record{}
	}
	return History{Total: len(recs), Attended: attended, Records: recs}, nil
}

// Snapshot is the live roll-up for one session.
type Snapshot struct {
	Records       []SessionEntry `json:"records"`
	TotalStudents int            `json:"total_students"`
	PresentCount  int            `json:"present_count"`
	Percentage    float64        `json:"percentage"`
}

// SnapshotFor returns the records committed under one session id, with a
// presence percentage over the enrolled student count.
func (s *Service) SnapshotFor(ctx context.Context, sessionID string) (Snapshot, error) {
	entries, err := s.ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	total, err := s.users.CountStudents(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if entries == nil {
		entries = []SessionEntry{}
	}
	snap := Snapshot{
		Records:       entries,
		TotalStudents: total,
		PresentCount:  len(entries),
	}
	if total > 0 {
		snap.Percentage = float64(snap.PresentCount) / float64(total) * 100
	}
	return snap, nil
}
