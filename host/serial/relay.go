package serial

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// RelayFrames writes each telemetry-link frame to uart and returns the
// number of bytes written. Any drivers.UART works, so the same loop runs
// against a Mirror on the host and a machine UART on a board.
func RelayFrames(uart drivers.UART, frames [][]byte) (int, error) {
	total := 0
	for i, f := range frames {
		n, err := uart.Write(f)
		total += n
		if err != nil {
			return total, fmt.Errorf("relay frame %d: %w", i, err)
		}
	}
	return total, nil
}

// DrainReplies reads at most len(buf) bytes the uart has buffered
func DrainReplies(uart drivers.UART, buf []byte) (int, error) {
	n := uart.Buffered()
	if n == 0 {
		return 0, nil
	}
	if n > len(buf) {
		n = len(buf)
	}
	return uart.Read(buf[:n])
}
