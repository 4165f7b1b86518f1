// Package lifecycle mirrors the shell's foreground/background state.
// Foreground gets a responsive in-process check timer; in the background
// only the coarse scheduler cadence remains. Transitions are idempotent:
// shells report state changes redundantly and re-arming must be safe.
package lifecycle

import (
	"log"
	"sync"
	"time"
)

type State string

const (
	StateForeground State = "foreground"
	StateBackground State = "background"
)

// Manager arms and cancels the foreground check timer.
type Manager struct {
	mu            sync.Mutex
	state         State
	checkInterval time.Duration
	triggerCheck  func()
	ticker        *time.Ticker
	stopTicker    chan struct{}
}

// New creates a manager starting in the background state. triggerCheck
// is invoked on foreground entry and on every foreground tick; the
// update checker's own floor keeps redundant triggers cheap.
func New(checkInterval time.Duration, triggerCheck func()) *Manager {
	return &Manager{
		state:         StateBackground,
		checkInterval: checkInterval,
		triggerCheck:  triggerCheck,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// EnterForeground arms the foreground timer and triggers an immediate
// check. Calling it while already foregrounded is a no-op.
func (m *Manager) EnterForeground() {
	m.mu.Lock()
	if m.state == StateForeground {
		m.mu.Unlock()
		return
	}
	m.state = StateForeground
	m.armLocked()
	m.mu.Unlock()

	log.Println("App entered foreground.")
	if m.triggerCheck != nil {
		m.triggerCheck()
	}
}

// EnterBackground cancels the foreground timer. Calling it while already
// backgrounded is a no-op.
func (m *Manager) EnterBackground() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateBackground {
		return
	}
	m.state = StateBackground
	m.cancelLocked()
	log.Println("App entered background.")
}

// Shutdown cancels any armed timer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

func (m *Manager) armLocked() {
	m.cancelLocked()
	if m.checkInterval <= 0 || m.triggerCheck == nil {
		return
	}
	m.ticker = time.NewTicker(m.checkInterval)
	m.stopTicker = make(chan struct{})
	go func(ticker *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-ticker.C:
				m.triggerCheck()
			case <-stop:
				return
			}
		}
	}(m.ticker, m.stopTicker)
}

func (m *Manager) cancelLocked() {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.stopTicker)
		m.ticker = nil
		m.stopTicker = nil
	}
}
