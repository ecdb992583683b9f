package game

import "errors"

var (
	// ErrInvalidInput flags an empty or malformed name or investment. It is
	// surfaced to the originating client only; session state is untouched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReconnectFailed is returned when no player exists under the
	// reconnecting name. The caller decides whether to fall back to a join.
	ErrReconnectFailed = errors.New("reconnect failed")

	// ErrIllegalTransition flags a command that is not valid in the current
	// game phase. Never fatal.
	ErrIllegalTransition = errors.New("illegal transition")
)
