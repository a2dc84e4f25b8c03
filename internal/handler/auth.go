package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/auth"
	"smartattend/internal/identity"
)

type registerRequest struct {
	USN       string `json:"usn" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IsTeacher bool   `json:"is_teacher"`
}

// RegisterUser creates an account and returns an access token.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.USN, req.Name, req.Email, req.Password, req.IsTeacher)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *identity.User) {
	token, _, err := auth.Issue(user.USN, user.Name, user.Email, user.IsTeacher,
		h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(status, gin.H{
		"access_token": token,
		"user": gin.H{
			"usn":        user.USN,
			"name":       user.Name,
			"email":      user.Email,
			"is_teacher": user.IsTeacher,
		},
	})
}
