package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	detections []Detection
	queue      [][]Detection
	err        error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetDetections sets the detections that will be returned by Detect.
func (m *MockDetector) SetDetections(detections []Detection) {
	m.detections = detections
	m.queue = nil
}

// QueueDetections sets per-frame detection results. Each call to Detect
// consumes one entry; when the queue is drained Detect returns the static
// detections set via SetDetections.
func (m *MockDetector) QueueDetections(frames ...[]Detection) {
	m.queue = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured detections or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Detection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.detections, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PlasticBottleDetection returns a preset Detection for a plastic bottle
// centered in a 640x480 frame.
func PlasticBottleDetection() Detection {
	return Detection{
		Label:      "plastic",
		Confidence: 0.93,
		Box:        image.Rect(240, 120, 400, 360),
	}
}

// CrushedCanDetection returns a preset Detection for a metal can.
func CrushedCanDetection() Detection {
	return Detection{
		Label:      "metal",
		Confidence: 0.88,
		Box:        image.Rect(280, 200, 360, 320),
	}
}
