//go:build unix

package cmd

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingPipe returns a pipe whose read end is a blocking descriptor, the
// way stdin usually is when inherited from a shell.
func blockingPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	var fds [2]int
	require.NoError(t, syscall.Pipe(fds[:]))
	r := os.NewFile(uintptr(fds[0]), "stdin")
	w := os.NewFile(uintptr(fds[1]), "writer")
	t.Cleanup(func() {
		_ = w.Close()
		_ = r.Close()
	})
	return r, w
}

func TestRunParseInterruptsBlockingRead(t *testing.T) {
	r, w := blockingPipe(t)
	_, err := w.Write(encode(t, []byte{0xAB, 0x01}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runParse(ctx, testConfig(), r, &out)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Equal(t, "{  2} AB 1\n", out.String())
	case <-time.After(3 * time.Second):
		t.Fatal("runParse still blocked after cancel")
	}
}
