package link

type Option func(*Link)

// WithMode overrides the line configuration. Intended for drivers and tests
// that need a different read timeout; the device itself expects DefaultMode.
func WithMode(mode Mode) Option {
	return func(l *Link) { l.mode = mode }
}

// WithEventBuffer sets the initial capacity of the event queue. The queue
// grows as needed, so this never causes the read loop to block.
func WithEventBuffer(capacity int) Option {
	return func(l *Link) { l.eventBuffer = capacity }
}
