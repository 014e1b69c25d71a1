// Package tray provides the operator's system tray controls for the
// EcoSort kiosk.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the kiosk operator's tray menu: capture toggle, the latest
// detection, the point balance, and quit.
type Tray struct {
	onToggle    func(capturing bool)
	onDashboard func()
	onQuit      func()
	capturing   bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuDetection *systray.MenuItem
	menuPoints    *systray.MenuItem
}

// New creates a new Tray instance. Capture starts disabled; the
// operator turns it on from the menu.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback for the capture toggle menu item.
func (t *Tray) OnToggle(fn func(capturing bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback for the dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("EcoSort")
	systray.SetTooltip("EcoSort Recycling Kiosk")

	t.menuToggle = systray.AddMenuItem("○ Capture off", "Toggle the detection camera")
	systray.AddSeparator()

	t.menuDetection = systray.AddMenuItem("Last: none", "Last detected material")
	t.menuDetection.Disable()
	t.menuPoints = systray.AddMenuItem("Points: 0", "Available points")
	t.menuPoints.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the kiosk dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit EcoSort")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the capture toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.capturing = !t.capturing
	capturing := t.capturing

	if capturing {
		t.menuToggle.SetTitle("● Capture on")
	} else {
		t.menuToggle.SetTitle("○ Capture off")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(capturing)
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCapturing updates the toggle display when capture state changes
// outside the menu, for example after a camera failure.
func (t *Tray) SetCapturing(capturing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.capturing = capturing
	if t.menuToggle == nil {
		return
	}
	if capturing {
		t.menuToggle.SetTitle("● Capture on")
	} else {
		t.menuToggle.SetTitle("○ Capture off")
	}
}

// SetLastDetection updates the last detection display in the menu.
func (t *Tray) SetLastDetection(material string, credits int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuDetection != nil {
		t.menuDetection.SetTitle(fmt.Sprintf("Last: %s (+%d)", material, credits))
	}
}

// SetPoints updates the available points display in the menu.
func (t *Tray) SetPoints(available int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPoints != nil {
		t.menuPoints.SetTitle(fmt.Sprintf("Points: %d", available))
	}
}
