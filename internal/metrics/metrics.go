// Package metrics exposes prometheus collectors for the attendance core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarksTotal counts committed attendance records by marking mode.
	MarksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Committed attendance records by marking mode.",
	}, []string{"mode"})

	// MarkRejectionsTotal counts mark attempts rejected before commit.
	MarkRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_mark_rejections_total",
		Help: "Attendance mark attempts rejected before commit.",
	}, []string{"reason"})

	// FaceVerificationsTotal counts face verifications by policy branch.
	FaceVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "face_verifications_total",
		Help: "Face verifications by policy branch.",
	}, []string{"policy"})
)
