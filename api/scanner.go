/*
scanner.go - Scheduled low-stock scans

PURPOSE:
  Runs the alert edge detector on a cron schedule and logs products that
  newly dropped below their threshold. This replaces a dashboard someone
  has to remember to open: the scan happens whether or not anyone is
  looking.

DESIGN:
  - One cron entry; a scan that finds nothing new logs at debug level
  - Each scan moves the edge-detector baseline, so a product is reported
    once when it crosses, not on every scan while it stays low
  - Manual scans via POST /api/alerts/scan share the same baseline

USAGE:
  scanner, err := api.NewAlertScanner(alerts, "@every 15m", log)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - inventory/alerts.go: DetectNewAlerts semantics
  - handlers.go: ScanAlerts endpoint (manual scan)
*/
package api

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrovet/stock-engine/inventory"
)

// AlertScanner periodically runs the low-stock edge detector.
type AlertScanner struct {
	alerts *inventory.AlertEngine
	log    *zap.Logger
	cron   *cron.Cron
}

// NewAlertScanner schedules scans with a cron expression (standard five
// fields or descriptors like "@every 15m", "@hourly").
func NewAlertScanner(alerts *inventory.AlertEngine, schedule string, log *zap.Logger) (*AlertScanner, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &AlertScanner{
		alerts: alerts,
		log:    log,
		cron:   cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.scan); err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins scheduled scanning in a background goroutine.
func (s *AlertScanner) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running scan to finish.
func (s *AlertScanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *AlertScanner) scan() {
	newly, current, err := s.alerts.DetectNewAlerts(context.Background())
	if err != nil {
		s.log.Warn("scheduled alert scan failed", zap.Error(err))
		return
	}

	for _, p := range newly {
		s.log.Warn("product dropped below stock threshold",
			zap.Int("code", p.Code),
			zap.String("name", p.Name),
			zap.Int("quantity", p.Quantity),
			zap.Int("threshold", s.alerts.ThresholdFor(p.Code)))
	}
	if len(newly) == 0 {
		s.log.Debug("alert scan: nothing new", zap.Int("under_threshold", len(current)))
	}
}
