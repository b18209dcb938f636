package events

const (
	// KindTx identifies a character the device is about to transmit.
	KindTx Kind = "trainer.tx"
	// KindResult identifies the outcome of one operator response.
	KindResult Kind = "trainer.result"
	// KindSpeed identifies the current or changed trainer speed.
	KindSpeed Kind = "trainer.speed"
	// KindSessionState identifies a training session running state.
	KindSessionState Kind = "trainer.session_state"
	// KindContextLost identifies a device request to resynchronize.
	KindContextLost Kind = "trainer.context_lost"
)

// Tx announces that the device is about to key Char as Pattern.
type Tx struct {
	Base
	Char     rune
	Pattern  string
	Distance int
}

// NewTx creates a transmit event.
func NewTx(char rune, pattern string, distance int) Tx {
	return Tx{Base: NewBase(KindTx), Char: char, Pattern: pattern, Distance: distance}
}

// Result carries the outcome of one operator response. Prob is the device's
// 0-100 confidence score.
type Result struct {
	Base
	Correct  bool
	Typed    rune
	Expected rune
	Prob     int
}

// NewResult creates a result event.
func NewResult(correct bool, typed, expected rune, prob int) Result {
	return Result{Base: NewBase(KindResult), Correct: correct, Typed: typed, Expected: expected, Prob: prob}
}

// Direction is the direction of a speed change.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Speed carries the trainer speed in words per minute.
type Speed struct {
	Base
	WPM       int
	Direction Direction
}

// NewSpeed creates a speed event.
func NewSpeed(wpm int, direction Direction) Speed {
	return Speed{Base: NewBase(KindSpeed), WPM: wpm, Direction: direction}
}

// SessionState carries whether a training session is running.
type SessionState struct {
	Base
	Running bool
}

// NewSessionState creates a session state event.
func NewSessionState(running bool) SessionState {
	return SessionState{Base: NewBase(KindSessionState), Running: running}
}

// ContextLost marks a device request to resynchronize.
type ContextLost struct{ Base }

// NewContextLost creates a context lost event.
func NewContextLost() ContextLost {
	return ContextLost{Base: NewBase(KindContextLost)}
}
