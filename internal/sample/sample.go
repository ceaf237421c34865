// Package sample generates serial streams for exercising the parser: runs of
// well-formed frames, optionally separated by junk bytes and followed by a
// cut-off frame, together with the output a correct parser must produce.
package sample

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"firestige.xyz/smparser/internal/framing"
)

var ErrInvalidOptions = errors.New("sample: invalid options")

type Options struct {
	Packets int
	MinLen  int
	MaxLen  int
	// MaxNoise is the most junk bytes inserted before each frame. Junk never
	// contains marker0, so it can never start a frame.
	MaxNoise int
	// TruncateTail appends a frame whose payload is cut short.
	TruncateTail bool
	Seed         uint64
}

func DefaultOptions() Options {
	return Options{
		Packets: 10,
		MinLen:  0,
		MaxLen:  framing.MaxPayload,
	}
}

func (o Options) validate() error {
	switch {
	case o.Packets < 0:
		return fmt.Errorf("%w: packets must not be negative", ErrInvalidOptions)
	case o.MinLen < 0 || o.MaxLen > framing.MaxPayload || o.MinLen > o.MaxLen:
		return fmt.Errorf("%w: length range [%d,%d] outside [0,%d]", ErrInvalidOptions, o.MinLen, o.MaxLen, framing.MaxPayload)
	case o.MaxNoise < 0:
		return fmt.Errorf("%w: noise must not be negative", ErrInvalidOptions)
	}
	return nil
}

type Generator struct {
	opts Options
	rng  *rand.Rand
}

func New(opts Options) (*Generator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Write writes the stream to stream and, if expected is not nil, the parser
// output it must produce to expected.
func (g *Generator) Write(stream, expected io.Writer) error {
	buf := make([]byte, 0, framing.MaxPayload+framing.HeaderLen+g.opts.MaxNoise)
	var line []byte

	for i := 0; i < g.opts.Packets; i++ {
		buf = g.appendNoise(buf[:0])
		payload := g.payload()
		var err error
		if buf, err = framing.AppendFrame(buf, payload); err != nil {
			return err
		}
		if _, err := stream.Write(buf); err != nil {
			return fmt.Errorf("sample: write stream: %w", err)
		}
		if expected != nil {
			line = framing.AppendPacketLine(line[:0], framing.Packet{Payload: payload})
			if _, err := expected.Write(line); err != nil {
				return fmt.Errorf("sample: write expected output: %w", err)
			}
		}
	}

	if g.opts.TruncateTail {
		buf = g.appendNoise(buf[:0])
		buf = append(buf, framing.Marker0, framing.Marker1, framing.MaxPayload)
		buf = append(buf, g.bytes(g.rng.IntN(framing.MaxPayload))...)
		if _, err := stream.Write(buf); err != nil {
			return fmt.Errorf("sample: write stream: %w", err)
		}
	}
	return nil
}

func (g *Generator) payload() []byte {
	n := g.opts.MinLen
	if span := g.opts.MaxLen - g.opts.MinLen; span > 0 {
		n += g.rng.IntN(span + 1)
	}
	return g.bytes(n)
}

func (g *Generator) bytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(g.rng.UintN(256))
	}
	return b
}

func (g *Generator) appendNoise(dst []byte) []byte {
	if g.opts.MaxNoise == 0 {
		return dst
	}
	for n := g.rng.IntN(g.opts.MaxNoise + 1); n > 0; n-- {
		b := byte(g.rng.UintN(255))
		if b >= framing.Marker0 {
			b++
		}
		dst = append(dst, b)
	}
	return dst
}
