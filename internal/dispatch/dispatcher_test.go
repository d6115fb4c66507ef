package dispatch

import (
	"NetSentry/internal/model"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type memorySink struct {
	lines []string
	err   error
}

func (s *memorySink) WriteLine(line string) error {
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, line)
	return nil
}

func testAlert() *model.Alert {
	return &model.Alert{
		Kind:       model.KindSynFlood,
		SrcIP:      "1.2.3.4",
		DetectedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SynCount:   101,
	}
}

func TestDispatcher_WritesLogLine(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink)

	d.Dispatch(testAlert())

	if len(sink.lines) != 1 {
		t.Fatalf("Expected 1 sink line, got %d", len(sink.lines))
	}
	line := sink.lines[0]
	for _, want := range []string{"2025-06-01T12:00:00Z", "[WARNING]", "Potential SYN flood from 1.2.3.4"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected line to contain %q, got %q", want, line)
		}
	}
}

func TestDispatcher_SinkFailureDoesNotBlockSubscribers(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	d := NewDispatcher(sink)

	var delivered []*model.Alert
	d.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		delivered = append(delivered, alert)
	}))

	d.Dispatch(testAlert())

	if len(delivered) != 1 {
		t.Fatalf("Expected subscriber delivery despite sink failure, got %d deliveries", len(delivered))
	}
}

func TestDispatcher_PanickingSubscriberIsIsolated(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink)

	d.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		panic("broken handler")
	}))
	var delivered int
	d.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		delivered++
	}))

	d.Dispatch(testAlert())
	d.Dispatch(testAlert())

	if delivered != 2 {
		t.Errorf("Expected 2 deliveries to the healthy subscriber, got %d", delivered)
	}
	if len(sink.lines) != 2 {
		t.Errorf("Expected 2 sink lines despite subscriber panics, got %d", len(sink.lines))
	}
}

func TestDispatcher_NilSinkStillDelivers(t *testing.T) {
	d := NewDispatcher(nil)

	var delivered int
	d.Subscribe(model.SubscriberFunc(func(alert *model.Alert) {
		delivered++
	}))

	d.Dispatch(testAlert())
	if delivered != 1 {
		t.Errorf("Expected delivery with nil sink, got %d", delivered)
	}
}

func TestFileSink_AppendsLines(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sink_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "alerts.log")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("Failed to create file sink: %v", err)
	}

	if err := sink.WriteLine("first"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	if err := sink.WriteLine("second"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read alert log: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("Unexpected log contents: %q", string(data))
	}
}

func TestFormatLine_PortScanDetail(t *testing.T) {
	alert := &model.Alert{
		Kind:        model.KindPortScan,
		SrcIP:       "5.6.7.8",
		DetectedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UniquePorts: []uint16{80, 81, 82},
	}
	line := FormatLine(alert)
	if !strings.Contains(line, "Potential port scan from 5.6.7.8") {
		t.Errorf("Unexpected line: %q", line)
	}
	if !strings.Contains(line, "3 unique ports") {
		t.Errorf("Expected unique-port detail in line: %q", line)
	}
}
