// Package metrics exposes parser counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"firestige.xyz/smparser/internal/framing"
)

const namespace = "smparser"

type counter struct {
	name string
	help string
	load func(*framing.Stats) uint64
}

var counters = []counter{
	{"bytes_read_total", "Total number of bytes read from the input stream", func(s *framing.Stats) uint64 { return s.BytesRead.Load() }},
	{"packets_total", "Total number of packets decoded and written", func(s *framing.Stats) uint64 { return s.Packets.Load() }},
	{"payload_bytes_total", "Total number of payload bytes in decoded packets", func(s *framing.Stats) uint64 { return s.PayloadBytes.Load() }},
	{"discarded_bytes_total", "Total number of input bytes discarded while resynchronizing or at end of stream", func(s *framing.Stats) uint64 { return s.DiscardedBytes.Load() }},
	{"resync_events_total", "Total number of marker mismatches", func(s *framing.Stats) uint64 { return s.ResyncEvents.Load() }},
	{"truncated_packets_total", "Total number of incomplete packets dropped at end of stream", func(s *framing.Stats) uint64 { return s.Truncated.Load() }},
}

// Register registers one counter per Stats field with reg. The counters read
// stats on every scrape, so they are live while the parser runs.
func Register(reg prometheus.Registerer, stats *framing.Stats) error {
	for _, c := range counters {
		load := c.load
		cf := prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      c.name,
				Help:      c.help,
			},
			func() float64 { return float64(load(stats)) },
		)
		if err := reg.Register(cf); err != nil {
			return err
		}
	}
	return nil
}
