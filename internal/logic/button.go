package logic

import "time"

// Button debounces a polled push-button line and reports presses.
type Button struct {
	debounce     time.Duration
	stable       bool
	pending      bool
	pendingSet   bool
	pendingSince time.Time
	baselined    bool
}

// NewButton creates a Button with the given debounce duration.
func NewButton(debounce time.Duration) *Button {
	return &Button{debounce: debounce}
}

// Process takes a polled line state (true = pressed) and reports whether a
// debounced press just completed. Nothing is reported until a baseline is
// established, so a button held at startup is not a press.
func (b *Button) Process(pressed bool, now time.Time) bool {
	if !b.baselined {
		if !b.pendingSet || b.pending != pressed {
			// Start or restart observation
			b.pending = pressed
			b.pendingSet = true
			b.pendingSince = now
			return false
		}
		if now.Sub(b.pendingSince) >= b.debounce {
			b.stable = pressed
			b.baselined = true
			b.pendingSet = false
		}
		return false
	}

	if pressed == b.stable {
		b.pendingSet = false
		return false
	}

	if !b.pendingSet || b.pending != pressed {
		b.pending = pressed
		b.pendingSet = true
		b.pendingSince = now
		return false
	}

	if now.Sub(b.pendingSince) >= b.debounce {
		b.stable = pressed
		b.pendingSet = false
		return pressed
	}
	return false
}

// IsBaselined returns whether the button has established a baseline.
func (b *Button) IsBaselined() bool {
	return b.baselined
}

// Pressed returns the current debounced state.
func (b *Button) Pressed() bool {
	return b.stable
}
