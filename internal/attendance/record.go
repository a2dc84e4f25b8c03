package attendance

import "time"

// Record is one row of the attendance ledger. Records are append-only:
// once written they are never updated or deleted.
type Record struct {
	ID              string    `json:"id"`
	UserUSN         string    `json:"usn"`
	SessionID       string    `json:"session_id"`
	ClassroomID     int       `json:"classroom_id"`
	Subject         string    `json:"subject"`
	QRMatch         bool      `json:"qr"`
	LocationMatch   bool      `json:"loc"`
	FaceMatch       bool      `json:"face"`
	MarkedByTeacher bool      `json:"by_teacher"`
	MarkedAt        time.Time `json:"timestamp"`
}

// SessionEntry is a ledger record joined with the student it belongs to,
// as shown on the live session view.
type SessionEntry struct {
	Record
	StudentName string `json:"student_name"`
}

// Classroom is static reference data: a named coordinate students are
// expected to check in near.
type Classroom struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
