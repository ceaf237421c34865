package cmd

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"firestige.xyz/smparser/internal/framing"
	"firestige.xyz/smparser/internal/log"
)

// stopGrace is how long a cancelled parse may take to leave a read that the
// input could not interrupt.
const stopGrace = 200 * time.Millisecond

var errSinkStopped = errors.New("packet output stopped")

// runUntilStopped runs p and returns its result. When ctx is cancelled it
// interrupts the read in progress where the input allows it; a read that
// cannot be interrupted, like a blocking terminal or inherited pipe, is
// abandoned after stopGrace and ctx.Err() is returned.
func runUntilStopped(ctx context.Context, p *framing.Parser, in io.Reader, logger log.Logger) error {
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	interruptRead(in, logger)
	select {
	case err := <-done:
		return err
	case <-time.After(stopGrace):
		logger.Debug("input read not interruptible, abandoning it")
		return ctx.Err()
	}
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

func interruptRead(in io.Reader, logger log.Logger) {
	if d, ok := in.(readDeadliner); ok {
		if err := d.SetReadDeadline(time.Now()); err == nil {
			return
		}
	}
	if c, ok := in.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.WithError(err).Debug("close input on interrupt")
		}
	}
}

// stoppableSink guards the packet writer against a parser goroutine that is
// still blocked in a read when output is flushed for the last time.
type stoppableSink struct {
	mu      sync.Mutex
	w       *framing.PacketWriter
	stopped bool
}

func (s *stoppableSink) WritePacket(pkt framing.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errSinkStopped
	}
	return s.w.WritePacket(pkt)
}

// stop flushes buffered lines; later writes fail with errSinkStopped.
func (s *stoppableSink) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.w.Flush()
}
