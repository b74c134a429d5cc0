package dispatch

// SyncCounter counts mutations whose gateway call has not settled yet.
// The zero value is ready to use.
type SyncCounter struct {
	pending int
	shown   bool
}

func (c *SyncCounter) Begin() {
	c.pending++
	c.shown = true
}

// End never takes the counter below zero.
func (c *SyncCounter) End() {
	if c.pending > 0 {
		c.pending--
	}
}

func (c *SyncCounter) Pending() int { return c.pending }

func (c *SyncCounter) Syncing() bool { return c.pending > 0 }

// Shown latches once the first mutation starts, so an indicator that appeared stays
// visible between mutations instead of flickering away.
func (c *SyncCounter) Shown() bool { return c.shown }

func (c *SyncCounter) Reset() { *c = SyncCounter{} }

const (
	StatusIdle   = "idle"
	StatusSaving = "saving"
	StatusSaved  = "saved"
)

// Status is idle until the first mutation, then saving/saved.
func (c *SyncCounter) Status() string {
	switch {
	case c.pending > 0:
		return StatusSaving
	case c.shown:
		return StatusSaved
	default:
		return StatusIdle
	}
}

// StatusText is the indicator label for a Status value.
func StatusText(status string) string {
	switch status {
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		return "All changes saved"
	default:
		return ""
	}
}
