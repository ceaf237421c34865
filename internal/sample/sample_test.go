package sample

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/smparser/internal/framing"
	"firestige.xyz/smparser/internal/log"
)

func run(t *testing.T, stream []byte) string {
	t.Helper()
	var out bytes.Buffer
	w := framing.NewPacketWriter(&out, 4096, false)
	p := framing.New(bytes.NewReader(stream), w, framing.WithLogger(log.Discard()))
	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, w.Flush())
	return out.String()
}

func TestGeneratedStreamsParseToExpectedOutput(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"2 packets", Options{Packets: 2, MinLen: 1, MaxLen: 8, Seed: 1}},
		{"10 short packets", Options{Packets: 10, MinLen: 0, MaxLen: 16, Seed: 2}},
		{"200 packets", Options{Packets: 200, MaxLen: framing.MaxPayload, Seed: 3}},
		{"extra data", Options{Packets: 200, MaxLen: framing.MaxPayload, MaxNoise: 64, Seed: 4}},
		{"truncated tail", Options{Packets: 5, MaxLen: 32, MaxNoise: 4, TruncateTail: true, Seed: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.opts)
			require.NoError(t, err)

			var stream, expected bytes.Buffer
			require.NoError(t, g.Write(&stream, &expected))

			got := run(t, stream.Bytes())
			assert.Equal(t, expected.String(), got)
			assert.Equal(t, tt.opts.Packets, strings.Count(got, "\n"))
		})
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	opts := Options{Packets: 20, MaxLen: 100, MaxNoise: 10, Seed: 42}

	var a, b bytes.Buffer
	g1, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, g1.Write(&a, nil))
	g2, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, g2.Write(&b, nil))

	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestNoiseNeverContainsMarker0(t *testing.T) {
	g, err := New(Options{MaxNoise: 4096, Seed: 7})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.NotContains(t, g.appendNoise(nil), framing.Marker0)
	}
}

func TestInvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Packets: -1},
		{MinLen: -1, MaxLen: 3},
		{MinLen: 10, MaxLen: 3},
		{MaxLen: framing.MaxPayload + 1},
		{MaxNoise: -2},
	} {
		_, err := New(opts)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%+v", opts)
	}
}
