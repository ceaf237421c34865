// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"firestige.xyz/smparser/internal/config"
	"firestige.xyz/smparser/internal/framing"
	"firestige.xyz/smparser/internal/log"
	"firestige.xyz/smparser/internal/metrics"
)

// Execute runs the root command. SIGINT and SIGTERM stop the parser cleanly:
// packets already decoded are flushed and the exit status is 0. Only the
// first signal is caught; a second one gets the default disposition.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smparser",
		Short: "Extract framed packets from a noisy serial byte stream",
		Long: `smparser reads a serial byte stream and prints every well-formed packet.

A packet on the wire is the start markers 0x21 0x22, one length byte and that
many payload bytes. Data that does not fit this format is discarded and the
parser resynchronizes on the next start marker. Packets cut short by the end
of the stream are not reported.

Each packet is printed as its length in braces followed by the payload bytes
in hexadecimal:

  {  3} 41 42 43
  {  4} 64 65 66 67

Diagnostics go to stderr and never mix with packet output.

Examples:
  smparser < 200_packets                     # parse stdin to stdout
  smparser -i /dev/ttyUSB0 --line-buffered   # follow a serial device
  smparser -d < extra_data 2>sync.log        # log resynchronization notices`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := log.Init(&cfg.Log); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			defer log.Close()
			return runParse(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file path (YAML)")
	pf.BoolP("debug", "d", false, "log debug diagnostics, including resynchronization notices")
	pf.Bool("trace", false, "log every state machine transition")
	pf.String("log-level", "", "diagnostic log level: trace, debug, info, warn, error")
	pf.String("log-file", "", "also write diagnostics to this rotated file")

	f := cmd.Flags()
	f.StringP("input", "i", config.StdStream, "input stream, '-' for stdin")
	f.StringP("output", "o", config.StdStream, "packet output, '-' for stdout")
	f.Bool("line-buffered", false, "flush each packet line as soon as it is decoded")
	f.Int("read-buffer", 0, "input buffer size in bytes")
	f.Int("write-buffer", 0, "output buffer size in bytes")
	f.Bool("metrics", false, "expose Prometheus metrics while parsing")
	f.String("metrics-listen", "", "metrics listen address")

	cmd.AddCommand(newSampleCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// loadConfig merges file, environment and flags, then applies --debug and
// --trace on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		cfg.Log.Level = "trace"
	} else if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// runParse parses one stream. It returns nil at end of stream or when ctx is
// cancelled, and an error when input or output fails.
func runParse(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer) (err error) {
	logger := log.GetLogger()

	in, closeIn, err := openInput(cfg.Parser.Input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(cfg.Parser.Output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	stats := &framing.Stats{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg, stats); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, reg)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if serr := srv.Stop(context.Background()); serr != nil {
				logger.WithError(serr).Warn("metrics server stop failed")
			}
		}()
	}

	w := framing.NewPacketWriter(out, cfg.Parser.WriteBufferSize, cfg.Parser.LineBuffered)
	sink := &stoppableSink{w: w}
	p := framing.New(
		framing.NewSource(in, cfg.Parser.ReadBufferSize),
		sink,
		framing.WithLogger(logger),
		framing.WithStats(stats),
	)

	runErr := runUntilStopped(ctx, p, in, logger)
	flushErr := sink.stop()
	logger.WithFields(stats.Snapshot().Fields()).Debug("stream finished")

	switch {
	case runErr != nil && ctx.Err() != nil:
		logger.Info("interrupted, stopping")
	case runErr != nil:
		var readErr *framing.ReadError
		if errors.As(runErr, &readErr) {
			logger.WithError(readErr.Err).WithField("offset", readErr.Offset).Error("read failed")
		}
		return runErr
	}
	if flushErr != nil {
		return fmt.Errorf("failed to write packets: %w", flushErr)
	}
	return nil
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == config.StdStream {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(name string, stdout io.Writer) (io.Writer, func() error, error) {
	if name == config.StdStream {
		return stdout, func() error { return nil }, nil
	}
	f, err := createFile(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}
