// Package power owns the low-power suspend primitive. The electrical
// behavior of the real suspend state is out of scope; what matters to the
// rest of the system is that Suspend blocks for the requested time and
// that the boot following it is classified as a deep-sleep wake.
package power

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/warmboot/pkg/log"
)

// Manager provides the suspend primitive.
type Manager struct {
	clk clock.Clock
	log log.Logger
}

// New creates a Manager driven by clk.
func New(clk clock.Clock, logger log.Logger) *Manager {
	return &Manager{clk: clk, log: logger}
}

// Suspend blocks for d, standing in for the processor's low-power state.
// Cancelling ctx aborts the suspend early with ctx.Err().
func (m *Manager) Suspend(ctx context.Context, d time.Duration) error {
	m.log.Info("suspending", log.Dur("for", d))
	t := m.clk.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		m.log.Info("woke from suspend")
		return nil
	}
}
