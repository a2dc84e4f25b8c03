// Package handler wires the HTTP surface over the attendance core.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/attendance"
	"smartattend/internal/auth"
	"smartattend/internal/cloudinary"
	"smartattend/internal/config"
	"smartattend/internal/face"
	"smartattend/internal/identity"
	"smartattend/internal/queue"
	"smartattend/internal/session"
)

// Handler holds the dependencies shared by all routes.
type Handler struct {
	cfg      config.App
	users    *identity.Repository
	accounts *identity.Service
	registry *session.Registry
	faces    *face.Service
	att      *attendance.Service
	ledger   *attendance.Repository
	cloud    *cloudinary.Client // nil when Cloudinary is not configured
	jobs     queue.Queue
}

// New creates a handler.
func New(cfg config.App, users *identity.Repository, accounts *identity.Service,
	registry *session.Registry, faces *face.Service, att *attendance.Service,
	ledger *attendance.Repository, cloud *cloudinary.Client, jobs queue.Queue) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		accounts: accounts,
		registry: registry,
		faces:    faces,
		att:      att,
		ledger:   ledger,
		cloud:    cloud,
		jobs:     jobs,
	}
}

// Mount registers all routes on the engine.
func (h *Handler) Mount(r *gin.Engine) {
	authRequired := auth.Bearer(h.cfg.JWTSigningKey, h.cfg.JWTIssuer)

	ag := r.Group("/auth")
	ag.POST("/register", h.RegisterUser)
	ag.POST("/login", h.Login)

	qr := r.Group("/qr")
	qr.POST("/generate", authRequired, h.GenerateQR)
	qr.POST("/stop", authRequired, h.StopQR)
	qr.GET("/verify/:session_id", h.VerifyQR)
	qr.GET("/active-session", h.ActiveSession)

	r.POST("/location/verify", h.VerifyLocation)

	r.POST("/facial/verify", authRequired, h.VerifyFace)

	fr := r.Group("/face-registration", authRequired)
	fr.POST("/register-face", h.RegisterFace)
	fr.POST("/register-face-base64", h.RegisterFaceBase64)

	at := r.Group("/attendance")
	at.POST("/mark", authRequired, h.MarkAttendance)
	at.GET("/history/:student_name", authRequired, h.History)
	at.GET("/session/:session_id", authRequired, h.SessionAttendance)
	at.GET("/students", h.Students)

	r.POST("/teacher/override", h.Override)
}

// fail maps core errors onto HTTP status codes.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, attendance.ErrClassroomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrExpired),
		errors.Is(err, attendance.ErrValidation),
		errors.Is(err, identity.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
