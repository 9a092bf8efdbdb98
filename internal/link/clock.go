package link

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// AwaitClock reads src until a timing clock byte arrives. Clock ticks carry
// no data, so the byte is matched directly instead of being framed. The
// bytes that followed the tick in the same read are returned so they can be
// framed later.
func AwaitClock(src io.Reader) ([]byte, error) {
	buf := make([]byte, readChunk)
	for {
		n, err := src.Read(buf)
		if i := bytes.IndexByte(buf[:n], contracts.ClockTick); i >= 0 {
			return append([]byte(nil), buf[i+1:n]...), nil
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrClockEOF
		}
		if err != nil {
			return nil, fmt.Errorf("reading clock endpoint: %w", err)
		}
	}
}

// ValidateClock runs AwaitClock with a deadline. On failure src is closed.
func ValidateClock(src io.ReadCloser, timeout time.Duration) ([]byte, error) {
	type result struct {
		rest []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		rest, err := AwaitClock(src)
		ch <- result{rest, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			src.Close()
		}
		return r.rest, r.err
	case <-timer.C:
		// Closing the endpoint unblocks the pending read; its result is
		// discarded into the buffered channel.
		src.Close()
		return nil, fmt.Errorf("%w (%s)", ErrClockTimeout, timeout)
	}
}
