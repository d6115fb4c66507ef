// Package tracker implements the per-source-IP sliding-window state
// behind the two detectors. Trackers are not safe for concurrent use;
// the ingestion pipeline's single consumer goroutine is their sole
// mutator.
package tracker

import (
	"NetSentry/internal/model"
	"time"
)

// SynTracker detects SYN floods: more than threshold SYN-flagged packets
// from one source IP inside a sliding window.
type SynTracker struct {
	threshold int
	window    time.Duration
	entries   map[string][]time.Time
}

// NewSynTracker creates a SYN flood tracker. Both arguments must be
// positive; config normalization guarantees that upstream.
func NewSynTracker(threshold int, window time.Duration) *SynTracker {
	return &SynTracker{
		threshold: threshold,
		window:    window,
		entries:   make(map[string][]time.Time),
	}
}

// Observe records a SYN-flagged packet and returns an alert when the
// in-window count for the source IP strictly exceeds the threshold.
// The alert fires on every packet past the threshold, not once per
// window. Non-SYN records are a no-op.
//
// Eviction is narrowed to the touched IP's entry; stale entries for other
// IPs are left until next touched, which is observably equivalent.
func (t *SynTracker) Observe(rec *model.PacketRecord) *model.Alert {
	if !rec.SYN {
		return nil
	}

	cutoff := rec.Timestamp.Add(-t.window)
	kept := t.entries[rec.SrcIP][:0]
	for _, ts := range t.entries[rec.SrcIP] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, rec.Timestamp)
	t.entries[rec.SrcIP] = kept

	if len(kept) > t.threshold {
		return &model.Alert{
			Kind:       model.KindSynFlood,
			SrcIP:      rec.SrcIP,
			DetectedAt: rec.Timestamp,
			SynCount:   len(kept),
		}
	}
	return nil
}

// Len returns the current in-window SYN count tracked for ip.
func (t *SynTracker) Len(ip string) int {
	return len(t.entries[ip])
}
