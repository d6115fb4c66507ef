package protocol

import (
	"NetSentry/internal/model"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// NormalizePacket reduces a captured packet to the minimal record the
// detection engine needs. Packets without an IPv4 and TCP layer are
// rejected; the engine only evaluates TCP traffic.
func NormalizePacket(packet gopacket.Packet) (*model.PacketRecord, error) {
	rec := &model.PacketRecord{
		Timestamp: time.Now(), // Overwritten by capture metadata when available
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		rec.Timestamp = meta.Timestamp
	}

	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	rec.SrcIP = ipLayer.(*layers.IPv4).SrcIP.String()

	tcpLayer := packet.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return nil, fmt.Errorf("not a TCP packet")
	}
	tcp := tcpLayer.(*layers.TCP)
	rec.DstPort = uint16(tcp.DstPort)
	// A connection-initiation segment: SYN set, no other control flags.
	rec.SYN = tcp.SYN && !tcp.ACK && !tcp.RST && !tcp.FIN

	return rec, nil
}
