// Package pipeline implements the single-consumer ingestion queue that
// decouples the capture side from the detectors.
package pipeline

import (
	"NetSentry/internal/dispatch"
	"NetSentry/internal/engine/filter"
	"NetSentry/internal/engine/tracker"
	"NetSentry/internal/model"
	"log"
	"sync"
	"sync/atomic"
)

// Pipeline buffers submitted records and processes them on exactly one
// consumer goroutine, in arrival order. Sequential consumption is the
// concurrency-safety mechanism for all tracker state: the consumer loop
// is the sole mutator, so the trackers need no locks. Parallelizing
// consumption would require sharding trackers by source IP first.
type Pipeline struct {
	records    chan *model.PacketRecord
	filter     *filter.Filter
	syn        *tracker.SynTracker
	scan       *tracker.PortScanTracker
	dispatcher *dispatch.Dispatcher

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	processed atomic.Uint64
	dropped   atomic.Uint64
	alerts    atomic.Uint64
}

// New creates a pipeline with a bounded buffer of the given size.
func New(bufferSize int, f *filter.Filter, syn *tracker.SynTracker, scan *tracker.PortScanTracker, d *dispatch.Dispatcher) *Pipeline {
	return &Pipeline{
		records:    make(chan *model.PacketRecord, bufferSize),
		filter:     f,
		syn:        syn,
		scan:       scan,
		dispatcher: d,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the consumer loop.
func (p *Pipeline) Start() {
	p.wg.Add(1)
	go p.run()
}

// Submit enqueues a record without blocking the producer. When the buffer
// is full the oldest buffered record is dropped to make room; drops are
// counted, never silent. The bounded buffer is the backpressure point
// protecting memory from capture-side bursts.
func (p *Pipeline) Submit(rec *model.PacketRecord) {
	select {
	case p.records <- rec:
		return
	default:
	}

	// Buffer full: evict the oldest record, then retry once. The consumer
	// may have raced us for it, in which case the retry simply succeeds.
	select {
	case <-p.records:
		p.dropped.Add(1)
	default:
	}
	select {
	case p.records <- rec:
	default:
		p.dropped.Add(1)
	}
}

// Stop signals the consumer loop to exit after its in-flight record and
// waits for it. Records still buffered at that point are counted as
// dropped so shutdown never loses them without a trace. Further Stop
// calls are no-ops.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		p.wg.Wait()

		remaining := len(p.records)
		if remaining > 0 {
			p.dropped.Add(uint64(remaining))
			log.Printf("Pipeline stopped with %d unprocessed record(s) in buffer", remaining)
		}
	})
}

// Processed returns the number of records fully processed.
func (p *Pipeline) Processed() uint64 { return p.processed.Load() }

// Dropped returns the number of records dropped under backpressure or at
// shutdown.
func (p *Pipeline) Dropped() uint64 { return p.dropped.Load() }

// Alerts returns the number of alerts dispatched.
func (p *Pipeline) Alerts() uint64 { return p.alerts.Load() }

// run is the single consumer loop. It exits only on Stop; an individual
// record failure is isolated and logged, and the loop proceeds.
func (p *Pipeline) run() {
	defer p.wg.Done()
	for {
		// Check the stop signal before pulling the next record so Stop
		// takes effect between records, not mid-buffer.
		select {
		case <-p.stopChan:
			return
		default:
		}

		select {
		case <-p.stopChan:
			return
		case rec := <-p.records:
			p.process(rec)
		}
	}
}

// process runs both detectors on one record and dispatches any alerts.
func (p *Pipeline) process(rec *model.PacketRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error processing record from %s: %v", rec.SrcIP, r)
		}
	}()

	if !p.filter.IsSuspicious(rec.SrcIP) {
		p.processed.Add(1)
		return
	}

	// Both detectors run independently on every qualifying record; one
	// packet can trigger both kinds of alert.
	if rec.SYN {
		if alert := p.syn.Observe(rec); alert != nil {
			p.alerts.Add(1)
			p.dispatcher.Dispatch(alert)
		}
	}
	if alert := p.scan.Observe(rec); alert != nil {
		p.alerts.Add(1)
		p.dispatcher.Dispatch(alert)
	}
	p.processed.Add(1)
}
