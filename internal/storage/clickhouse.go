// Package storage persists dispatched alerts to ClickHouse.
package storage

import (
	"NetSentry/internal/config"
	"NetSentry/internal/model"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS sentry_alerts (
    DetectedAt  DateTime,
    Kind        String,
    SrcIP       String,
    SynCount    UInt32,
    UniquePorts Array(UInt16)
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(DetectedAt)
ORDER BY (Kind, DetectedAt);
`

const defaultFlushInterval = 5 * time.Second

// AlertWriter implements model.Subscriber, batching dispatched alerts
// into the sentry_alerts table. A write failure is logged and the batch
// discarded; persistence is best-effort and never blocks detection.
type AlertWriter struct {
	conn driver.Conn

	alerts   chan *model.Alert
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewAlertWriter connects to ClickHouse and ensures the alerts table exists.
func NewAlertWriter(cfg config.ClickHouseConfig) (*AlertWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	w := &AlertWriter{
		conn:     conn,
		alerts:   make(chan *model.Alert, 256),
		stopChan: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// HandleAlert enqueues an alert for the next batch. If the writer's own
// buffer is full the alert is dropped with a warning; the dispatcher must
// never be blocked by storage.
func (w *AlertWriter) HandleAlert(alert *model.Alert) {
	select {
	case w.alerts <- alert:
	default:
		log.Printf("WARNING: alert writer buffer full, dropping alert for %s", alert.SrcIP)
	}
}

// Close flushes any buffered alerts and closes the connection.
func (w *AlertWriter) Close() {
	close(w.stopChan)
	w.wg.Wait()
	w.conn.Close()
}

// run batches buffered alerts on a fixed interval.
func (w *AlertWriter) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(defaultFlushInterval)
	defer ticker.Stop()

	var pending []*model.Alert
	for {
		select {
		case alert := <-w.alerts:
			pending = append(pending, alert)
		case <-ticker.C:
			w.flush(pending)
			pending = nil
		case <-w.stopChan:
			// Drain whatever is still buffered before the final flush.
			for {
				select {
				case alert := <-w.alerts:
					pending = append(pending, alert)
					continue
				default:
				}
				break
			}
			w.flush(pending)
			return
		}
	}
}

// flush inserts one batch of alerts.
func (w *AlertWriter) flush(alerts []*model.Alert) {
	if len(alerts) == 0 {
		return
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO sentry_alerts")
	if err != nil {
		log.Printf("WARNING: failed to prepare alert batch: %v", err)
		return
	}

	for _, alert := range alerts {
		err = batch.Append(
			alert.DetectedAt,
			string(alert.Kind),
			alert.SrcIP,
			uint32(alert.SynCount),
			alert.UniquePorts,
		)
		if err != nil {
			log.Printf("WARNING: failed to append alert to batch: %v", err)
			return
		}
	}

	if err := batch.Send(); err != nil {
		log.Printf("WARNING: failed to send alert batch: %v", err)
		return
	}
	log.Printf("Wrote %d alert(s) to ClickHouse", len(alerts))
}
