// Package dispatch fans detector alerts out to the alert log and to
// registered subscribers.
package dispatch

import (
	"NetSentry/internal/model"
	"fmt"
	"log"
	"sync"
	"time"
)

// Dispatcher serializes alerts to a durable log sink and hands them to
// every registered subscriber, in dispatch order. The sink and the
// subscribers are independent best-effort side channels of the same
// event: a sink failure never suppresses subscriber delivery, and a
// failing subscriber never suppresses the sink or the other subscribers.
type Dispatcher struct {
	sink Sink

	mu          sync.RWMutex
	subscribers []model.Subscriber
}

// NewDispatcher creates a dispatcher writing to the given sink. A nil
// sink disables logging but not subscriber delivery.
func NewDispatcher(sink Sink) *Dispatcher {
	return &Dispatcher{sink: sink}
}

// Subscribe registers a handler invoked once per dispatched alert.
func (d *Dispatcher) Subscribe(sub model.Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, sub)
}

// Dispatch logs the alert and delivers it to all subscribers.
func (d *Dispatcher) Dispatch(alert *model.Alert) {
	if d.sink != nil {
		line := FormatLine(alert)
		if err := d.sink.WriteLine(line); err != nil {
			log.Printf("WARNING: failed to write alert to log sink: %v", err)
		}
	}

	d.mu.RLock()
	subs := d.subscribers
	d.mu.RUnlock()

	for _, sub := range subs {
		d.deliver(sub, alert)
	}
}

// deliver invokes one subscriber, containing any panic so a broken
// handler cannot crash the pipeline.
func (d *Dispatcher) deliver(sub model.Subscriber, alert *model.Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARNING: alert subscriber panicked: %v", r)
		}
	}()
	sub.HandleAlert(alert)
}

// FormatLine renders the human-readable log line for an alert.
func FormatLine(alert *model.Alert) string {
	detail := ""
	switch alert.Kind {
	case model.KindSynFlood:
		detail = fmt.Sprintf(" (%d SYNs in window)", alert.SynCount)
	case model.KindPortScan:
		detail = fmt.Sprintf(" (%d unique ports)", len(alert.UniquePorts))
	}
	return fmt.Sprintf("%s [WARNING] Potential %s from %s%s",
		alert.DetectedAt.Format(time.RFC3339), alert.Kind, alert.SrcIP, detail)
}
