package transceiver

import "errors"

// ErrFraming, ErrParity, and ErrOverrun are returned by a Line's
// Read* methods when the UART reports a framing, parity, or overrun
// condition mid-frame. These abort the current RX frame silently; the
// host is never notified.
var (
	ErrFraming = errors.New("transceiver: UART framing error")
	ErrParity  = errors.New("transceiver: UART parity error")
	ErrOverrun = errors.New("transceiver: UART overrun error")
)

// isLineFault reports whether err is one of the UART fault conditions
// that silently aborts the current frame rather than being surfaced.
func isLineFault(err error) bool {
	return err == ErrFraming || err == ErrParity || err == ErrOverrun
}
