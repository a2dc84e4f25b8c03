package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/attendance"
	"smartattend/internal/face"
	"smartattend/internal/geo"
)

type markRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	StudentID   string `json:"student_id" binding:"required"`
	ClassroomID int    `json:"classroom_id"`
	Location    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location" binding:"required"`
	Image string `json:"image"`
}

// MarkAttendance runs the automatic multi-factor check-in.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var probe []byte
	if req.Image != "" {
		var err error
		if probe, err = face.DecodeImage(req.Image); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rec, err := h.att.Mark(c.Request.Context(), attendance.MarkRequest{
		SessionID:   req.SessionID,
		StudentName: req.StudentID,
		ClassroomID: req.ClassroomID,
		Location:    geo.Point{Lat: req.Location.Lat, Lon: req.Location.Lon},
		Probe:       probe,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Attendance marked successfully",
		"attendance_id": rec.ID,
	})
}

// History returns a student's attendance summary.
func (h *Handler) History(c *gin.Context) {
	hist, err := h.att.HistoryFor(c.Request.Context(), c.Param("student_name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// SessionAttendance returns the live roll-up for one session.
func (h *Handler) SessionAttendance(c *gin.Context) {
	snap, err := h.att.SnapshotFor(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Students lists all non-teacher users for the override UI.
func (h *Handler) Students(c *gin.Context) {
	users, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	students := make([]gin.H, 0, len(users))
	for _, u := range users {
		students = append(students, gin.H{"name": u.Name, "usn": u.USN, "email": u.Email})
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

type overrideRequest struct {
	TeacherName string   `json:"teacher_name"`
	Subject     string   `json:"subject"`
	USNs        []string `json:"usns"`
}

// Override marks attendance manually for a batch of students.
func (h *Handler) Override(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marked, err := h.att.Override(c.Request.Context(), req.TeacherName, req.Subject, req.USNs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Attendance overridden successfully",
		"marked":  marked,
	})
}
