// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Default camera settings for the kiosk webcam.
const (
	DefaultFPS    = 15
	DefaultWidth  = 1280
	DefaultHeight = 720

	// OpenTimeout bounds how long Open waits for the device before
	// reporting a device error instead of blocking the kiosk.
	OpenTimeout = 10 * time.Second
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrOpenTimeout is returned when the camera device does not come up
// within OpenTimeout.
var ErrOpenTimeout = errors.New("timed out opening camera")

// Settings holds device hints for the camera. Resolution and FPS are
// requests, not guarantees; the driver may pick the closest mode.
type Settings struct {
	Width  int
	Height int
	FPS    int
}

// DefaultSettings returns the kiosk's standard capture settings.
func DefaultSettings() Settings {
	return Settings{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID int
	settings Settings
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
}

// NewCamera creates a new Camera with the given device ID and settings.
func NewCamera(deviceID int, settings Settings) Camera {
	if settings.Width <= 0 {
		settings.Width = DefaultWidth
	}
	if settings.Height <= 0 {
		settings.Height = DefaultHeight
	}
	if settings.FPS <= 0 {
		settings.FPS = DefaultFPS
	}

	return &cameraImpl{
		deviceID: deviceID,
		settings: settings,
	}
}

// Open opens the camera for capturing frames, applying the configured
// resolution and FPS hints. It fails with ErrOpenTimeout if the device
// does not respond within OpenTimeout.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	type openResult struct {
		capture *gocv.VideoCapture
		err     error
	}

	// OpenVideoCapture can block indefinitely on a wedged device, so
	// open on a separate goroutine with a bounded wait.
	done := make(chan openResult, 1)
	go func() {
		capture, err := gocv.OpenVideoCapture(c.deviceID)
		done <- openResult{capture: capture, err: err}
	}()

	var capture *gocv.VideoCapture
	select {
	case result := <-done:
		if result.err != nil {
			return fmt.Errorf("open camera %d: %w", c.deviceID, result.err)
		}
		capture = result.capture
	case <-time.After(OpenTimeout):
		// The orphaned open is released by its goroutine if it ever
		// completes.
		go func() {
			if result := <-done; result.err == nil {
				result.capture.Close()
			}
		}()
		return fmt.Errorf("open camera %d: %w", c.deviceID, ErrOpenTimeout)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.settings.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.settings.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.settings.FPS))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.FPS = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.settings.FPS
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
