// Package gpio provides the physical reset button with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the reset button line.
type Reader interface {
	// Read returns whether the button is pressed.
	// The button pulls the line to ground: raw inactive (0) = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultPinButton is the BCM pin the reset button is wired to.
const DefaultPinButton = 17
