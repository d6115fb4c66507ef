package tracker

import (
	"NetSentry/internal/model"
	"testing"
	"time"
)

func tcpRecord(ip string, port uint16, at time.Time) *model.PacketRecord {
	return &model.PacketRecord{SrcIP: ip, DstPort: port, SYN: false, Timestamp: at}
}

func TestPortScanTracker_AlertsPastThreshold(t *testing.T) {
	// unique_ports=2, window=60s; ports 80,81,82 at t=0,10,20 must alert
	// on the 3rd unique port (count=3>2).
	tr := NewPortScanTracker(2, 60*time.Second)

	if alert := tr.Observe(tcpRecord("5.6.7.8", 80, base)); alert != nil {
		t.Fatalf("Expected no alert at 1 unique port, got %+v", alert)
	}
	if alert := tr.Observe(tcpRecord("5.6.7.8", 81, base.Add(10*time.Second))); alert != nil {
		t.Fatalf("Expected no alert at 2 unique ports, got %+v", alert)
	}

	alert := tr.Observe(tcpRecord("5.6.7.8", 82, base.Add(20*time.Second)))
	if alert == nil {
		t.Fatal("Expected alert on 3rd unique port within window")
	}
	if alert.Kind != model.KindPortScan {
		t.Errorf("Expected kind %q, got %q", model.KindPortScan, alert.Kind)
	}
	if len(alert.UniquePorts) != 3 {
		t.Errorf("Expected 3 unique ports in payload, got %d", len(alert.UniquePorts))
	}
	for i, want := range []uint16{80, 81, 82} {
		if alert.UniquePorts[i] != want {
			t.Errorf("Expected port %d at index %d, got %d", want, i, alert.UniquePorts[i])
		}
	}
}

func TestPortScanTracker_RepeatedPortNeverGrowsSet(t *testing.T) {
	// Probing one port indefinitely targets volume, not breadth, and must
	// never trigger this detector.
	tr := NewPortScanTracker(2, 60*time.Second)

	for i := 0; i < 100; i++ {
		if alert := tr.Observe(tcpRecord("5.6.7.8", 443, base.Add(time.Duration(i)*time.Millisecond))); alert != nil {
			t.Fatalf("Single-port volume must not alert, got %+v", alert)
		}
	}
	if got := tr.UniquePortCount("5.6.7.8"); got != 1 {
		t.Errorf("Expected unique-port count 1, got %d", got)
	}
}

func TestPortScanTracker_WindowRolloverResetsSet(t *testing.T) {
	// A scan split across two windows at exactly-threshold counts each
	// must not alert: rollover discards the prior window's evidence.
	tr := NewPortScanTracker(2, 60*time.Second)

	tr.Observe(tcpRecord("5.6.7.8", 80, base))
	tr.Observe(tcpRecord("5.6.7.8", 81, base.Add(time.Second)))

	// Past the window boundary: fresh bucket, two more ports.
	later := base.Add(61*time.Second + time.Millisecond)
	if alert := tr.Observe(tcpRecord("5.6.7.8", 82, later)); alert != nil {
		t.Fatalf("Expected reset bucket after rollover, got %+v", alert)
	}
	if alert := tr.Observe(tcpRecord("5.6.7.8", 83, later.Add(time.Second))); alert != nil {
		t.Fatalf("Exactly threshold ports in the new window must not alert, got %+v", alert)
	}
	if got := tr.UniquePortCount("5.6.7.8"); got != 2 {
		t.Errorf("Expected 2 ports in the new window, got %d", got)
	}
}

func TestPortScanTracker_PerIPIsolation(t *testing.T) {
	tr := NewPortScanTracker(2, 60*time.Second)

	tr.Observe(tcpRecord("1.1.1.1", 80, base))
	tr.Observe(tcpRecord("1.1.1.1", 81, base))
	tr.Observe(tcpRecord("2.2.2.2", 82, base))
	tr.Observe(tcpRecord("2.2.2.2", 83, base))

	// Each IP sits at exactly the threshold; pooling them would be a bug.
	if alert := tr.Observe(tcpRecord("2.2.2.2", 83, base.Add(time.Second))); alert != nil {
		t.Fatalf("Expected no alert, per-IP sets must be independent, got %+v", alert)
	}
}
