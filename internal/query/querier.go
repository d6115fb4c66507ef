package query

import (
	"NetSentry/internal/config"
	"NetSentry/internal/model"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Querier defines the interface for querying stored alerts.
type Querier interface {
	RecentAlerts(ctx context.Context, req AlertsRequest) ([]model.Alert, error)
}

// AlertsRequest narrows an alert query. Zero-valued fields are unfiltered.
type AlertsRequest struct {
	SrcIP string
	Kind  string
	Since time.Time
	Limit int
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
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

// RecentAlerts builds and executes a filtered query over sentry_alerts,
// newest first.
func (q *clickhouseQuerier) RecentAlerts(ctx context.Context, req AlertsRequest) ([]model.Alert, error) {
	var conditions []string
	var args []interface{}

	if req.SrcIP != "" {
		conditions = append(conditions, "SrcIP = ?")
		args = append(args, req.SrcIP)
	}
	if req.Kind != "" {
		conditions = append(conditions, "Kind = ?")
		args = append(args, req.Kind)
	}
	if !req.Since.IsZero() {
		conditions = append(conditions, "DetectedAt >= ?")
		args = append(args, req.Since)
	}

	query := "SELECT DetectedAt, Kind, SrcIP, SynCount, UniquePorts FROM sentry_alerts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY DetectedAt DESC"

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var (
			detectedAt time.Time
			kind       string
			srcIP      string
			synCount   uint32
			ports      []uint16
		)
		if err := rows.Scan(&detectedAt, &kind, &srcIP, &synCount, &ports); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, model.Alert{
			Kind:        model.AlertKind(kind),
			SrcIP:       srcIP,
			DetectedAt:  detectedAt,
			SynCount:    int(synCount),
			UniquePorts: ports,
		})
	}

	return alerts, nil
}
