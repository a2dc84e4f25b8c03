package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/auth"
	"smartattend/internal/face"
	"smartattend/internal/identity"
	"smartattend/internal/queue"
)

type faceVerifyRequest struct {
	Image  string `json:"image" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

// VerifyFace runs the face-verification policy for one probe image.
func (h *Handler) VerifyFace(c *gin.Context) {
	var req faceVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.ByName(c.Request.Context(), req.UserID)
	if errors.Is(err, identity.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"verified": false, "message": "User not found"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	probe, err := face.DecodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.FaceTimeout)
	defer cancel()
	res, err := h.faces.Verify(ctx, user.USN, probe)
	if err != nil {
		// strict mode only: the model failure surfaces instead of failing open
		fail(c, err)
		return
	}

	out := gin.H{
		"verified":   res.Verified,
		"message":    res.Message,
		"confidence": res.Confidence,
	}
	if res.Distance != nil {
		out["distance"] = *res.Distance
		out["threshold"] = *res.Threshold
	}
	c.JSON(http.StatusOK, out)
}

// RegisterFace stores a reference image uploaded as multipart form data.
func (h *Handler) RegisterFace(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	img, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}
	h.registerReference(c, img)
}

type faceRegisterBase64Request struct {
	Image string `json:"image" binding:"required"`
}

// RegisterFaceBase64 stores a reference image captured as a base64 data URL.
func (h *Handler) RegisterFaceBase64(c *gin.Context) {
	var req faceRegisterBase64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, err := face.DecodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.registerReference(c, img)
}

// registerReference resolves the caller from their token, persists the
// reference image, and queues the model-gallery enrollment.
func (h *Handler) registerReference(c *gin.Context, img []byte) {
	claims, ok := auth.FromContext(c)
	if !ok || claims.USN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token: missing USN"})
		return
	}

	user, err := h.users.ByUSN(c.Request.Context(), claims.USN)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.faces.Register(user.USN, img); err != nil {
		fail(c, err)
		return
	}

	if h.cloud != nil {
		if res, cerr := h.cloud.UploadReference(c.Request.Context(), img, user.USN); cerr != nil {
			log.Printf("cloudinary backup upload failed for %s: %v", user.USN, cerr)
		} else if uerr := h.users.SetPhotoURL(c.Request.Context(), user.USN, res.SecureURL); uerr != nil {
			log.Printf("save photo url failed for %s: %v", user.USN, uerr)
		}
	}

	if h.jobs != nil {
		msg := queue.Message{Type: queue.TypeEnrollFace, Body: []byte(user.USN)}
		if err := h.jobs.Publish(c.Request.Context(), msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Face registered successfully",
		"user":    user.Name,
		"usn":     user.USN,
	})
}
