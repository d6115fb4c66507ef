package model

import (
	"time"
)

// PacketRecord is the normalized form of a captured packet, carrying only
// the fields the detection engine evaluates.
type PacketRecord struct {
	SrcIP     string    `json:"src_ip"`
	DstPort   uint16    `json:"dst_port"`
	SYN       bool      `json:"syn"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertKind identifies which detector produced an alert.
type AlertKind string

const (
	KindSynFlood AlertKind = "SYN flood"
	KindPortScan AlertKind = "port scan"
)

// Alert is emitted by a detector the moment a threshold is crossed.
// It is never mutated after creation.
type Alert struct {
	Kind       AlertKind `json:"kind"`
	SrcIP      string    `json:"src_ip"`
	DetectedAt time.Time `json:"detected_at"`

	// SynCount is set for KindSynFlood: the number of SYNs observed from
	// SrcIP inside the current window.
	SynCount int `json:"syn_count,omitempty"`

	// UniquePorts is set for KindPortScan: the distinct destination ports
	// touched by SrcIP inside the current window.
	UniquePorts []uint16 `json:"unique_ports,omitempty"`
}
