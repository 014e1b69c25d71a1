// Package app provides the main application logic for the EcoSort
// recycling kiosk: it owns the capture-classify-tally pipeline and the
// session flags the presentation layer reads.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ecosortai/ecosort/internal/capture"
	"github.com/ecosortai/ecosort/internal/detector"
	"github.com/ecosortai/ecosort/internal/ledger"
	"github.com/ecosortai/ecosort/internal/store"
	"github.com/ecosortai/ecosort/internal/tracker"
)

// Pipeline timing constants.
const (
	// DefaultIdleFPS is the frame rate while no motion is detected.
	DefaultIdleFPS = 5
	// DefaultActiveFPS is the frame rate during active detection.
	DefaultActiveFPS = 15
	// IdleTimeout is how long after the last motion the pipeline drops
	// back to idle mode.
	IdleTimeout = 2 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Tracker      *tracker.Tracker
	Ledger       *ledger.Ledger
	CameraID     int
	CameraConfig capture.Settings
	Detector     detector.Config
	IdleFPS      int
	ActiveFPS    int
	MotionThresh float64
}

// App orchestrates frame capture, classification, and the point ledger.
// All pipeline state is mutated by a single goroutine; control methods
// only signal it.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	tracker  *tracker.Tracker
	ledger   *ledger.Ledger

	mu        sync.RWMutex
	capturing bool
	stopCh    chan struct{}
	lastErr   error
	terms     bool
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.CameraID, config.CameraConfig),
		motion:  capture.NewMotionDetector(motionThreshold),
		tracker: config.Tracker,
		ledger:  config.Ledger,
	}

	// Try the YOLO subprocess first, fall back to the mock detector.
	if yolo, err := detector.NewYOLODetector(config.Detector); err == nil {
		a.detector = yolo
		log.Println("Using YOLO material detection")
	} else {
		log.Printf("YOLO not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	// Terms acceptance survives restarts.
	if config.Store != nil {
		accepted, err := config.Store.Settings().GetBool(store.SettingTermsAccepted)
		if err != nil {
			log.Printf("Failed to load terms state: %v", err)
		}
		a.terms = accepted
	}

	return a
}

// SetDetector sets the material detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// AcceptTerms records that the user accepted the terms and conditions.
func (a *App) AcceptTerms() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingTermsAccepted, true); err != nil {
			return err
		}
	}
	a.terms = true

	return nil
}

// TermsAccepted reports whether the terms have been accepted.
func (a *App) TermsAccepted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.terms
}

// StartCapture opens the camera and begins the detection pipeline.
func (a *App) StartCapture() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capturing {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(a.config.IdleFPS)
	a.lastErr = nil
	a.stopCh = make(chan struct{})
	a.capturing = true
	go a.runPipeline(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// StopCapture halts the detection pipeline and releases the camera.
func (a *App) StopCapture() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *App) stopLocked() {
	if !a.capturing {
		return
	}

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.capturing = false

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Reset()

	log.Println("Detection pipeline stopped")
}

// IsCapturing reports whether the detection pipeline is running.
func (a *App) IsCapturing() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.capturing
}

// LastError returns the error that halted the previous capture session,
// if any.
func (a *App) LastError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Close stops capture and releases the detector and motion detector.
func (a *App) Close() {
	a.StopCapture()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
}

// failCapture records a fatal session error and stops the pipeline.
// Called from the pipeline goroutine; the session requires a manual
// restart afterwards.
func (a *App) failCapture(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.capturing {
		return
	}
	a.lastErr = err
	a.stopLocked()
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Detector returns the material detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Tracker returns the detection tracker.
func (a *App) Tracker() *tracker.Tracker {
	return a.tracker
}

// Ledger returns the point ledger.
func (a *App) Ledger() *ledger.Ledger {
	return a.ledger
}
