package tracker

import (
	"NetSentry/internal/model"
	"sort"
	"time"
)

// portEntry holds one source IP's evidence for the current window.
type portEntry struct {
	ports       map[uint16]struct{}
	windowStart time.Time
}

// PortScanTracker detects port scans: more than threshold distinct
// destination ports touched by one source IP inside a window. Eviction is
// a whole-bucket reset once the window expires, not per-port removal, so
// a rollover discards all prior port evidence for that IP.
type PortScanTracker struct {
	threshold int
	window    time.Duration
	entries   map[string]*portEntry
}

// NewPortScanTracker creates a port scan tracker. Both arguments must be
// positive; config normalization guarantees that upstream.
func NewPortScanTracker(threshold int, window time.Duration) *PortScanTracker {
	return &PortScanTracker{
		threshold: threshold,
		window:    window,
		entries:   make(map[string]*portEntry),
	}
}

// Observe records a TCP packet's destination port and returns an alert
// when the distinct-port count for the source IP strictly exceeds the
// threshold. Repeated hits on one port never grow the set, so single-port
// volume alone cannot trigger this detector.
func (t *PortScanTracker) Observe(rec *model.PacketRecord) *model.Alert {
	entry, ok := t.entries[rec.SrcIP]
	if !ok || rec.Timestamp.Sub(entry.windowStart) > t.window {
		entry = &portEntry{
			ports:       make(map[uint16]struct{}),
			windowStart: rec.Timestamp,
		}
		t.entries[rec.SrcIP] = entry
	}
	entry.ports[rec.DstPort] = struct{}{}

	if len(entry.ports) > t.threshold {
		return &model.Alert{
			Kind:        model.KindPortScan,
			SrcIP:       rec.SrcIP,
			DetectedAt:  rec.Timestamp,
			UniquePorts: sortedPorts(entry.ports),
		}
	}
	return nil
}

// UniquePortCount returns the current in-window distinct-port count for ip.
func (t *PortScanTracker) UniquePortCount(ip string) int {
	if entry, ok := t.entries[ip]; ok {
		return len(entry.ports)
	}
	return 0
}

// sortedPorts copies the set into a sorted slice so alert payloads are
// deterministic.
func sortedPorts(set map[uint16]struct{}) []uint16 {
	ports := make([]uint16, 0, len(set))
	for p := range set {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}
