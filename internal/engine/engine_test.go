package engine

import (
	"NetSentry/internal/config"
	"NetSentry/internal/model"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEngine_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "alerts.log")

	cfg := config.EngineConfig{
		SynFloodThreshold:   3,
		SynFloodWindow:      "10s",
		PortScanUniquePorts: 100,
		PortScanWindow:      "60s",
		BlacklistIPs:        []string{"9.9.9.9"},
		AlertLogPath:        logPath,
	}

	eng, err := New(&cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	var mu sync.Mutex
	var received []*model.Alert
	eng.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, alert)
	}))

	eng.Start()

	// 4 SYNs from a blacklisted source inside the window: the 4th must
	// cross the threshold of 3.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		eng.Submit(&model.PacketRecord{
			SrcIP:     "9.9.9.9",
			DstPort:   80,
			SYN:       true,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	deadline := time.After(2 * time.Second)
	for {
		processed, _, _ := eng.Stats()
		if processed == 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for records to process, got %d", processed)
		case <-time.After(time.Millisecond):
		}
	}
	eng.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(received))
	}
	if received[0].Kind != model.KindSynFlood || received[0].SynCount != 4 {
		t.Errorf("Unexpected alert: %+v", received[0])
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read alert log: %v", err)
	}
	if !strings.Contains(string(data), "Potential SYN flood from 9.9.9.9") {
		t.Errorf("Alert log missing expected line, got: %q", string(data))
	}
}

func TestEngine_NoAlertLogConfigured(t *testing.T) {
	cfg := config.EngineConfig{
		SynFloodThreshold:   1,
		PortScanUniquePorts: 100,
	}
	eng, err := New(&cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	var mu sync.Mutex
	alerts := 0
	eng.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		mu.Lock()
		defer mu.Unlock()
		alerts++
	}))

	eng.Start()
	base := time.Now()
	eng.Submit(&model.PacketRecord{SrcIP: "1.2.3.4", DstPort: 80, SYN: true, Timestamp: base})
	eng.Submit(&model.PacketRecord{SrcIP: "1.2.3.4", DstPort: 80, SYN: true, Timestamp: base.Add(time.Second)})

	deadline := time.After(2 * time.Second)
	for {
		processed, _, _ := eng.Stats()
		if processed == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for records to process")
		case <-time.After(time.Millisecond):
		}
	}
	eng.Stop()

	mu.Lock()
	defer mu.Unlock()
	if alerts != 1 {
		t.Errorf("Expected 1 alert without a log sink, got %d", alerts)
	}
}
