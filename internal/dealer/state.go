package dealer

import "time"

// State is the dealer's position in its game loop.
type State int32

const (
	Idle State = iota
	Filling
	Counting
	Verifying
	Reshuffling
	Finished
)

// String returns the string representation of a dealer state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Filling:
		return "filling"
	case Counting:
		return "counting"
	case Verifying:
		return "verifying"
	case Reshuffling:
		return "reshuffling"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// WakeReason tells the dealer why its countdown wait returned.
type WakeReason int

const (
	// WakeTimeout means the turn deadline passed.
	WakeTimeout WakeReason = iota
	// WakeVerify means a verification request may be queued.
	WakeVerify
	// WakeShutdown means the game context was cancelled.
	WakeShutdown
	// WakeTick means the timer display is due for a refresh.
	WakeTick
)

// String returns the string representation of a wake reason
func (w WakeReason) String() string {
	switch w {
	case WakeTimeout:
		return "timeout"
	case WakeVerify:
		return "verify"
	case WakeShutdown:
		return "shutdown"
	case WakeTick:
		return "tick"
	default:
		return "unknown"
	}
}

// TimerMode selects how the turn timer behaves, derived from the sign of
// the configured turn timeout.
type TimerMode int

const (
	// TimerCountdown reshuffles when a positive turn timeout elapses.
	TimerCountdown TimerMode = iota
	// TimerElapsed shows the time since the last set and reshuffles only
	// when the table holds no set.
	TimerElapsed
	// TimerNone shows nothing and reshuffles only when the table holds no
	// set.
	TimerNone
)

func timerMode(turnTimeout time.Duration) TimerMode {
	switch {
	case turnTimeout > 0:
		return TimerCountdown
	case turnTimeout == 0:
		return TimerElapsed
	default:
		return TimerNone
	}
}
