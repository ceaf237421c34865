package framing

import (
	"bufio"
	"io"
)

// NewSource adapts r to a ByteSource. Readers that already read byte by byte
// are used as they are; anything else gets a buffer of size bytes so the
// parser never issues a syscall per byte.
func NewSource(r io.Reader, size int) ByteSource {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReaderSize(r, size)
}
