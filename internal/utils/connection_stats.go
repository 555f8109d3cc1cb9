package utils

// ConnectionStats holds lifetime counters that outlive any single
// algorithm instance, so they survive a switch_algorithm hot-swap the same
// way the packet ledger does.
type ConnectionStats struct {
	PacketsSent int64
	PacketsLost int64
	BytesSent   int64
	BytesLost   int64
}
