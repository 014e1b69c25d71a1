package detector

import (
	"errors"
	"image"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinConfidence != 0.8 {
		t.Errorf("MinConfidence = %v, want 0.8", cfg.MinConfidence)
	}
	if cfg.IoUThreshold != 0.7 {
		t.Errorf("IoUThreshold = %v, want 0.7", cfg.IoUThreshold)
	}

	wantLabels := []string{"cardboard", "metal", "paper", "plastic"}
	if len(cfg.Labels) != len(wantLabels) {
		t.Fatalf("Labels = %v, want %v", cfg.Labels, wantLabels)
	}
	for i, l := range wantLabels {
		if cfg.Labels[i] != l {
			t.Errorf("Labels[%d] = %q, want %q", i, cfg.Labels[i], l)
		}
	}
}

func TestMockDetector_StaticDetections(t *testing.T) {
	m := NewMockDetector()
	m.SetDetections([]Detection{PlasticBottleDetection()})

	dets, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("len(detections) = %d, want 1", len(dets))
	}
	if dets[0].Label != "plastic" {
		t.Errorf("label = %q, want %q", dets[0].Label, "plastic")
	}
	if dets[0].Confidence < 0.8 {
		t.Errorf("confidence = %v, want >= 0.8", dets[0].Confidence)
	}
}

func TestMockDetector_Queue(t *testing.T) {
	m := NewMockDetector()
	m.QueueDetections(
		[]Detection{PlasticBottleDetection()},
		nil,
		[]Detection{CrushedCanDetection(), PlasticBottleDetection()},
	)

	wantLens := []int{1, 0, 2, 0}
	for i, want := range wantLens {
		dets, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() frame %d error = %v", i, err)
		}
		if len(dets) != want {
			t.Errorf("frame %d: len(detections) = %d, want %d", i, len(dets), want)
		}
	}
}

func TestMockDetector_Error(t *testing.T) {
	m := NewMockDetector()
	m.SetError(ErrUnavailable)

	_, err := m.Detect(nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Detect() error = %v, want ErrUnavailable", err)
	}
}

func TestJSONDetection_ToDetection(t *testing.T) {
	j := jsonDetection{
		Label:      "metal",
		Confidence: 0.91,
		Box:        jsonBox{X: 10, Y: 20, W: 100, H: 50},
	}

	d := j.toDetection()

	if d.Label != "metal" {
		t.Errorf("Label = %q, want %q", d.Label, "metal")
	}
	want := image.Rect(10, 20, 110, 70)
	if d.Box != want {
		t.Errorf("Box = %v, want %v", d.Box, want)
	}
}

func TestNewYOLODetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/yolo_service.py"

	if _, err := NewYOLODetector(cfg); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewYOLODetector() error = %v, want ErrUnavailable", err)
	}
}
