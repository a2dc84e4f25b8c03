package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartattend/internal/geo"
)

type locationVerifyRequest struct {
	ClassroomID int      `json:"classroom_id" binding:"required"`
	Lat         *float64 `json:"lat" binding:"required"`
	Lon         *float64 `json:"lon" binding:"required"`
}

// VerifyLocation evaluates the geofence for a classroom. Public.
func (h *Handler) VerifyLocation(c *gin.Context) {
	var req locationVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classroom, err := h.ledger.GetClassroom(c.Request.Context(), req.ClassroomID)
	if err != nil {
		fail(c, err)
		return
	}

	student := geo.Point{Lat: *req.Lat, Lon: *req.Lon}
	center := geo.Point{Lat: classroom.Lat, Lon: classroom.Lon}
	dist := geo.Distance(student, center)
	c.JSON(http.StatusOK, gin.H{
		"distance_m":    dist,
		"within_radius": dist <= h.cfg.GeofenceRadiusM,
	})
}
