package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/smparser/internal/config"
	"firestige.xyz/smparser/internal/sample"
)

type sampleFlags struct {
	output string
	expect string
	opts   sample.Options
}

func newSampleCmd() *cobra.Command {
	sf := &sampleFlags{opts: sample.DefaultOptions()}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample serial stream",
		Long: `Write a stream of random well-formed packets, optionally with junk bytes
between them and a truncated packet at the end. With --expect the output a
correct parser produces for the stream is written alongside it.

Examples:
  smparser sample -n 2 > 2_packets
  smparser sample -n 10 --max-len 16 -o 10_short_packets --expect 10_short_packets.out
  smparser sample -n 200 --noise 64 --seed 7 > extra_data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(sf, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVarP(&sf.opts.Packets, "packets", "n", sf.opts.Packets, "number of packets")
	f.IntVar(&sf.opts.MinLen, "min-len", sf.opts.MinLen, "minimum payload length")
	f.IntVar(&sf.opts.MaxLen, "max-len", sf.opts.MaxLen, "maximum payload length")
	f.IntVar(&sf.opts.MaxNoise, "noise", 0, "maximum junk bytes before each packet")
	f.BoolVar(&sf.opts.TruncateTail, "truncate-tail", false, "end the stream with an incomplete packet")
	f.Uint64Var(&sf.opts.Seed, "seed", 1, "random seed")
	f.StringVarP(&sf.output, "output", "o", config.StdStream, "stream output, '-' for stdout")
	f.StringVar(&sf.expect, "expect", "", "write the expected parser output to this file")
	return cmd
}

func runSample(sf *sampleFlags, stdout io.Writer) (err error) {
	g, err := sample.New(sf.opts)
	if err != nil {
		return err
	}

	stream, closeStream, err := openOutput(sf.output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStream(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	sw := bufio.NewWriter(stream)

	var ew *bufio.Writer
	if sf.expect != "" {
		f, cerr := createFile(sf.expect)
		if cerr != nil {
			return fmt.Errorf("failed to create expected output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close expected output: %w", cerr)
			}
		}()
		ew = bufio.NewWriter(f)
	}

	var expected io.Writer
	if ew != nil {
		expected = ew
	}
	if err := g.Write(sw, expected); err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to write stream: %w", err)
	}
	if ew != nil {
		if err := ew.Flush(); err != nil {
			return fmt.Errorf("failed to write expected output: %w", err)
		}
	}
	return nil
}
