// Package metrics exposes Prometheus metrics for the detection pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesRead counts frames successfully read from the camera.
	FramesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecosort_frames_read_total",
		Help: "Frames read from the camera.",
	})

	// FrameErrors counts failed camera reads.
	FrameErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecosort_frame_errors_total",
		Help: "Camera read failures.",
	})

	// ClassifierErrors counts failed inference calls.
	ClassifierErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecosort_classifier_errors_total",
		Help: "Classifier invocations that returned an error.",
	})

	// Detections counts accepted detections by material.
	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecosort_detections_total",
		Help: "Accepted material detections.",
	}, []string{"material"})

	// CreditsEarned counts credits accrued from accepted detections.
	CreditsEarned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecosort_credits_earned_total",
		Help: "Credits earned from accepted detections.",
	})

	// InferenceDuration observes how long each classifier call takes.
	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecosort_inference_duration_seconds",
		Help:    "Classifier inference latency.",
		Buckets: prometheus.DefBuckets,
	})

	// Redemptions counts completed redemptions by kind (avatar, voucher).
	Redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecosort_redemptions_total",
		Help: "Completed redemptions.",
	}, []string{"kind"})
)
