package main

import (
	"NetSentry/internal/config"
	"NetSentry/internal/engine"
	"NetSentry/internal/model"
	"NetSentry/pkg/pcap"
	"flag"
	"log"
	"sync"
	"time"
)

// pcap-replay runs a pcap file through a local engine instance and
// prints the resulting alerts, for offline analysis of a capture.
func main() {
	pcapPath := flag.String("pcap", "", "Path to the pcap file to replay (required).")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	if *pcapPath == "" {
		log.Fatalf("-pcap flag is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	eng, err := engine.New(&cfg.Engine)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	var alertCount int
	var mu sync.Mutex
	eng.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		mu.Lock()
		alertCount++
		mu.Unlock()
		log.Printf("ALERT: %s from %s at %s", alert.Kind, alert.SrcIP, alert.DetectedAt)
	}))
	eng.Start()

	reader, err := pcap.NewReader(*pcapPath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()

	records := make(chan *model.PacketRecord, 100)
	go reader.ReadRecords(records)

	submitted := 0
	for rec := range records {
		eng.Submit(rec)
		submitted++
	}

	// Let the consumer drain the buffer before stopping, so the replay
	// accounts for every record rather than dropping a tail at shutdown.
	for {
		processed, dropped, _ := eng.Stats()
		if processed+dropped >= uint64(submitted) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	eng.Stop()

	mu.Lock()
	defer mu.Unlock()
	log.Printf("Replay complete: %d record(s) submitted, %d alert(s).", submitted, alertCount)
}
