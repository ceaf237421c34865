package framing

import (
	"bufio"
	"io"
)

// Sink receives every completed packet, in stream order.
type Sink interface {
	WritePacket(pkt Packet) error
}

const upperHex = "0123456789ABCDEF"

// AppendPacketLine appends the output line for pkt: the payload length
// right-justified in three columns inside braces, then each payload byte as
// unpadded uppercase hex preceded by a space, then a newline.
//
//	{  3} 41 42 43
//	{  2} 0 FF
func AppendPacketLine(dst []byte, pkt Packet) []byte {
	n := pkt.Len()
	dst = append(dst, '{')
	switch {
	case n < 10:
		dst = append(dst, ' ', ' ')
	case n < 100:
		dst = append(dst, ' ')
	}
	dst = appendDecimal(dst, n)
	dst = append(dst, '}')
	for _, b := range pkt.Payload {
		dst = append(dst, ' ')
		if b >= 0x10 {
			dst = append(dst, upperHex[b>>4])
		}
		dst = append(dst, upperHex[b&0x0F])
	}
	return append(dst, '\n')
}

func appendDecimal(dst []byte, n int) []byte {
	if n >= 10 {
		dst = appendDecimal(dst, n/10)
	}
	return append(dst, byte('0'+n%10))
}

// PacketWriter is the Sink that renders packet lines onto an io.Writer.
type PacketWriter struct {
	w            *bufio.Writer
	line         []byte
	flushEachOne bool
}

// NewPacketWriter buffers up to size bytes of output. With flushEachOne set
// every line is flushed as soon as it is written, for live serial feeds.
func NewPacketWriter(w io.Writer, size int, flushEachOne bool) *PacketWriter {
	return &PacketWriter{
		w:            bufio.NewWriterSize(w, size),
		line:         make([]byte, 0, 8+3*MaxPayload),
		flushEachOne: flushEachOne,
	}
}

func (pw *PacketWriter) WritePacket(pkt Packet) error {
	pw.line = AppendPacketLine(pw.line[:0], pkt)
	if _, err := pw.w.Write(pw.line); err != nil {
		return err
	}
	if pw.flushEachOne {
		return pw.w.Flush()
	}
	return nil
}

func (pw *PacketWriter) Flush() error {
	return pw.w.Flush()
}
