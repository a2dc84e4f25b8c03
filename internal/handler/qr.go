package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type qrGenerateRequest struct {
	Subject   string `json:"subject" binding:"required"`
	TeacherID string `json:"teacher_id" binding:"required"`
}

// GenerateQR opens a new QR attendance session.
func (h *Handler) GenerateQR(c *gin.Context) {
	var req qrGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.registry.Create(req.Subject, req.TeacherID)
	c.JSON(http.StatusOK, gin.H{
		"message":    "QR session created",
		"session_id": s.ID,
		"subject":    s.Subject,
	})
}

type qrStopRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// StopQR deactivates a session.
func (h *Handler) StopQR(c *gin.Context) {
	var req qrStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Stop(req.SessionID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "QR session stopped",
		"session_id": req.SessionID,
	})
}

// VerifyQR is the public session liveness probe scanned clients hit.
func (h *Handler) VerifyQR(c *gin.Context) {
	s, err := h.registry.Validate(c.Param("session_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"subject":    s.Subject,
		"teacher_id": s.TeacherID,
	})
}

// ActiveSession reports whether any session is currently live. Public.
func (h *Handler) ActiveSession(c *gin.Context) {
	s, ok := h.registry.CurrentActive()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":     true,
		"session_id": s.ID,
		"subject":    s.Subject,
		"teacher_id": s.TeacherID,
	})
}
