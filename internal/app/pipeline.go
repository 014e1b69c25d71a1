package app

import (
	"log"
	"time"

	"github.com/ecosortai/ecosort/internal/metrics"
)

// runPipeline is the main detection loop that processes frames from the
// camera. It manages the state transitions between idle and active modes
// based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (low FPS, no inference)
// 2. On motion detected, switch to active mode (higher FPS)
// 3. Run material classification on each active frame
// 4. Record accepted detections in the tracker (counts + history)
// 5. Recompute earned points (cooldown-gated inside the ledger)
// 6. After 2s without motion, switch back to idle mode
//
// A camera read failure is fatal to the session: the loop halts and the
// operator must restart capture.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(a.config.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			camera := a.Camera()

			frame, err := camera.ReadFrame()
			if err != nil {
				select {
				case <-stopCh:
					// Stop raced the read; not a device failure.
					return
				default:
				}
				metrics.FrameErrors.Inc()
				log.Printf("Camera read failed, halting capture: %v", err)
				a.failCapture(err)
				return
			}
			metrics.FramesRead.Inc()

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					camera.SetFPS(a.config.ActiveFPS)
					frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > IdleTimeout {
					activeMode = false
					camera.SetFPS(a.config.IdleFPS)
					frameInterval = time.Second / time.Duration(a.config.IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip inference while idle.
			if !activeMode {
				frame.Close()
				continue
			}

			// Step 2: Material classification
			det := a.Detector()
			start := time.Now()
			detections, err := det.Detect(frame)
			metrics.InferenceDuration.Observe(time.Since(start).Seconds())
			frame.Close() // Done with the frame

			if err != nil {
				// A failed inference is not a detection: nothing is
				// recorded for this frame.
				metrics.ClassifierErrors.Inc()
				log.Printf("Error classifying frame: %v", err)
				continue
			}

			if len(detections) == 0 {
				continue
			}

			// Step 3: Record accepted detections
			events := a.tracker.Ingest(detections)
			for _, event := range events {
				metrics.Detections.WithLabelValues(string(event.Material)).Inc()
				metrics.CreditsEarned.Add(float64(event.Credits))
				log.Printf("Detected %s (+%d credits)", event.Material, event.Credits)
			}

			// Step 4: Refresh earned points from the history
			if len(events) > 0 {
				if _, err := a.ledger.Recompute(); err != nil {
					log.Printf("Failed to refresh earned points: %v", err)
				}
			}
		}
	}
}
