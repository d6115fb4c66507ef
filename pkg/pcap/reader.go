package pcap

import (
	"NetSentry/internal/engine/protocol"
	"NetSentry/internal/model"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// Reader reads packets from a pcap file.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadRecords reads all packets from the pcap file and sends the
// normalized records to the provided channel. It closes the channel when
// done. Packets the engine cannot evaluate (non-IPv4, non-TCP) are
// skipped with a log line.
func (r *Reader) ReadRecords(out chan<- *model.PacketRecord) {
	defer close(out)

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		rec, err := protocol.NormalizePacket(packet)
		if err != nil {
			// Unsupported packet types are expected in real captures.
			log.Printf("Skipping packet: %v", err)
			continue
		}
		out <- rec
	}
}
