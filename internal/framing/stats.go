package framing

import "sync/atomic"

// Stats counts what a parser has seen. Counters may be read concurrently
// with a running parser.
type Stats struct {
	BytesRead      atomic.Uint64
	Packets        atomic.Uint64
	PayloadBytes   atomic.Uint64
	DiscardedBytes atomic.Uint64
	ResyncEvents   atomic.Uint64
	Truncated      atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	BytesRead      uint64 `yaml:"bytes_read"`
	Packets        uint64 `yaml:"packets"`
	PayloadBytes   uint64 `yaml:"payload_bytes"`
	DiscardedBytes uint64 `yaml:"discarded_bytes"`
	ResyncEvents   uint64 `yaml:"resync_events"`
	Truncated      uint64 `yaml:"truncated"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		BytesRead:      s.BytesRead.Load(),
		Packets:        s.Packets.Load(),
		PayloadBytes:   s.PayloadBytes.Load(),
		DiscardedBytes: s.DiscardedBytes.Load(),
		ResyncEvents:   s.ResyncEvents.Load(),
		Truncated:      s.Truncated.Load(),
	}
}

func (s StatsSnapshot) Fields() map[string]interface{} {
	return map[string]interface{}{
		"bytes_read":      s.BytesRead,
		"packets":         s.Packets,
		"payload_bytes":   s.PayloadBytes,
		"discarded_bytes": s.DiscardedBytes,
		"resync_events":   s.ResyncEvents,
		"truncated":       s.Truncated,
	}
}
