package framing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/smparser/internal/log"
)

// ByteSource is the blocking "read next byte" capability. ReadByte returns
// io.EOF at the clean end of the stream; any other error is a read failure.
type ByteSource = io.ByteReader

// ReadError is a read failure other than end of stream. It is the only
// fatal condition of the parser.
type ReadError struct {
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("framing: read failed at offset %d: %v", e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Parser turns a byte stream into packets. It is not safe for concurrent
// use; only its Stats may be read from other goroutines.
type Parser struct {
	src    ByteSource
	sink   Sink
	logger log.Logger
	stats  *Stats

	traceOn bool
	offset  int64

	length        int
	buf           [MaxPayload]byte
	syncErrLogged bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the diagnostics logger; the default is log.GetLogger().
func WithLogger(l log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithStats makes the parser count into s instead of a private Stats.
func WithStats(s *Stats) Option {
	return func(p *Parser) {
		if s != nil {
			p.stats = s
		}
	}
}

// New returns a parser reading src and writing packets to sink.
func New(src ByteSource, sink Sink, opts ...Option) *Parser {
	p := &Parser{
		src:    src,
		sink:   sink,
		logger: log.GetLogger(),
		stats:  &Stats{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.traceOn = p.logger.IsTraceEnabled()
	return p
}

func (p *Parser) Stats() *Stats {
	return p.stats
}

// Run drives the state machine until the stream ends. It returns nil at end
// of stream, whatever state the parser was in; an unfinished frame is dropped
// without being emitted. A read failure is returned as *ReadError, a sink
// failure as is, and cancellation of ctx as ctx.Err().
func (p *Parser) Run(ctx context.Context) error {
	var st state = awaitingMarker0{}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.traceOn {
			p.logger.Tracef("entered state %s", st.name())
		}
		next, err := st.step(p)
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.finish(st)
				return nil
			}
			return err
		}
		st = next
	}
}

func (p *Parser) readByte() (byte, error) {
	b, err := p.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, &ReadError{Offset: p.offset, Err: err}
	}
	p.offset++
	p.stats.BytesRead.Add(1)
	return b, nil
}

// resync records n discarded bytes. The notice is logged once per run of
// mismatches; the flag is cleared when a packet completes.
func (p *Parser) resync(st state, n int) {
	p.stats.ResyncEvents.Add(1)
	p.stats.DiscardedBytes.Add(uint64(n))
	if p.syncErrLogged {
		return
	}
	p.syncErrLogged = true
	p.logger.WithFields(map[string]interface{}{
		"state":  st.name(),
		"offset": p.offset - 1,
	}).Debug("sync error - searching for marker 0 again")
}

func (p *Parser) emit() error {
	pkt := Packet{Payload: bytes.Clone(p.buf[:p.length])}
	if err := p.sink.WritePacket(pkt); err != nil {
		return fmt.Errorf("framing: write packet: %w", err)
	}
	p.stats.Packets.Add(1)
	p.stats.PayloadBytes.Add(uint64(p.length))
	p.syncErrLogged = false
	p.length = 0
	return nil
}

func (p *Parser) finish(st state) {
	if n := pending(st, p.length); n > 0 {
		p.stats.Truncated.Add(1)
		p.stats.DiscardedBytes.Add(uint64(n))
		p.logger.WithFields(map[string]interface{}{
			"state": st.name(),
			"bytes": n,
		}).Debug("EOF inside frame, dropping incomplete packet")
		return
	}
	p.logger.Debug("EOF")
}
