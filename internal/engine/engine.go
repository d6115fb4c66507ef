// Package engine assembles the detection components into a runnable
// instance: suspicion filter, both sliding-window detectors, the
// ingestion pipeline and the alert dispatcher.
package engine

import (
	"NetSentry/internal/config"
	"NetSentry/internal/dispatch"
	"NetSentry/internal/engine/filter"
	"NetSentry/internal/engine/pipeline"
	"NetSentry/internal/engine/tracker"
	"NetSentry/internal/model"
	"log"
)

// Engine is one independent detection instance. Tracker state is owned by
// the instance, never shared globally, so multiple engines (e.g. one per
// interface) can run side by side without interference.
type Engine struct {
	pipeline   *pipeline.Pipeline
	dispatcher *dispatch.Dispatcher
	sink       *dispatch.FileSink
}

// New builds an engine from the configuration. The alert log sink is
// optional: with an empty path, alerts still reach all subscribers.
func New(cfg *config.EngineConfig) (*Engine, error) {
	thresholds := cfg.Thresholds()

	var sink *dispatch.FileSink
	var dispatcherSink dispatch.Sink
	if cfg.AlertLogPath != "" {
		s, err := dispatch.NewFileSink(cfg.AlertLogPath)
		if err != nil {
			return nil, err
		}
		sink = s
		dispatcherSink = s
	}

	d := dispatch.NewDispatcher(dispatcherSink)
	f := filter.New(thresholds.Whitelist, thresholds.Blacklist)
	syn := tracker.NewSynTracker(thresholds.SynFloodThreshold, thresholds.SynFloodWindow)
	scan := tracker.NewPortScanTracker(thresholds.PortScanUniquePorts, thresholds.PortScanWindow)

	return &Engine{
		pipeline:   pipeline.New(cfg.BufferSizeOrDefault(), f, syn, scan, d),
		dispatcher: d,
		sink:       sink,
	}, nil
}

// Subscribe registers an alert subscriber with the dispatcher.
func (e *Engine) Subscribe(sub model.Subscriber) {
	e.dispatcher.Subscribe(sub)
}

// Start launches the pipeline's consumer loop.
func (e *Engine) Start() {
	e.pipeline.Start()
	log.Println("Detection engine started.")
}

// Submit hands a normalized record to the ingestion pipeline.
func (e *Engine) Submit(rec *model.PacketRecord) {
	e.pipeline.Submit(rec)
}

// Stop shuts the pipeline down cooperatively and closes the log sink.
func (e *Engine) Stop() {
	e.pipeline.Stop()
	if e.sink != nil {
		if err := e.sink.Close(); err != nil {
			log.Printf("WARNING: failed to close alert log sink: %v", err)
		}
	}
	log.Printf("Detection engine stopped: %d record(s) processed, %d dropped, %d alert(s) dispatched.",
		e.pipeline.Processed(), e.pipeline.Dropped(), e.pipeline.Alerts())
}

// Stats returns the pipeline's processed, dropped and alert counters.
func (e *Engine) Stats() (processed, dropped, alerts uint64) {
	return e.pipeline.Processed(), e.pipeline.Dropped(), e.pipeline.Alerts()
}
