/*
alerts.go - Low-stock threshold classification and edge detection

PURPOSE:
  The AlertEngine answers two different questions about low stock:

    ListUnderThreshold - LEVEL query: which products are below their
                         threshold right now. Idempotent.
    DetectNewAlerts    - EDGE query: which products dropped below their
                         threshold since the last scan. One-shot: each
                         call moves the baseline, so an immediate second
                         call reports nothing new.

THRESHOLDS:
  Per-product minimum quantities, with a global default of 5 for
  unconfigured products. "Below" is strict: quantity < threshold.

BASELINE:
  The set of codes surfaced by the last scan is persisted so edge
  detection survives restarts. A product that recovers above its
  threshold silently leaves the baseline; no "recovered" notification
  is generated.

SEE ALSO:
  - inventory.go: Source of the product list
  - store.go:     AlertState persistence interface
*/
package inventory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultThreshold applies to products with no configured threshold.
const DefaultThreshold = 5

// AlertEngine classifies products as under-threshold and detects newly
// crossed ones. All methods are safe for concurrent use.
type AlertEngine struct {
	inv   *Inventory
	state AlertState
	log   *zap.Logger

	mu         sync.Mutex
	thresholds map[int]int
	notified   map[int]bool // baseline: codes surfaced by the last scan
}

// NewAlertEngine loads thresholds and the notification baseline from the
// state backend. An empty backend yields engine defaults.
func NewAlertEngine(inv *Inventory, state AlertState, log *zap.Logger) (*AlertEngine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx := context.Background()
	thresholds, err := state.LoadThresholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	if thresholds == nil {
		thresholds = make(map[int]int)
	}

	codes, err := state.LoadNotified(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notified baseline: %w", err)
	}
	notified := make(map[int]bool, len(codes))
	for _, c := range codes {
		notified[c] = true
	}

	return &AlertEngine{
		inv:        inv,
		state:      state,
		log:        log,
		thresholds: thresholds,
		notified:   notified,
	}, nil
}

// ThresholdFor returns the configured threshold for a code, or
// DefaultThreshold when unconfigured.
func (a *AlertEngine) ThresholdFor(code int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.thresholds[code]; ok {
		return t
	}
	return DefaultThreshold
}

// SetThreshold configures the minimum quantity for a product and
// persists the threshold map. Negative thresholds are rejected.
func (a *AlertEngine) SetThreshold(ctx context.Context, code, threshold int) error {
	if threshold < 0 {
		return &ValidationError{Field: "threshold", Message: "cannot be negative"}
	}

	a.mu.Lock()
	a.thresholds[code] = threshold
	snapshot := make(map[int]int, len(a.thresholds))
	for k, v := range a.thresholds {
		snapshot[k] = v
	}
	a.mu.Unlock()

	if err := a.state.SaveThresholds(ctx, snapshot); err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	a.log.Info("threshold configured", zap.Int("code", code), zap.Int("threshold", threshold))
	return nil
}

// ListUnderThreshold returns every product whose quantity is strictly
// below its threshold, in catalog insertion order.
func (a *AlertEngine) ListUnderThreshold() []Product {
	products := a.inv.Products()

	a.mu.Lock()
	defer a.mu.Unlock()

	var out []Product
	for _, p := range products {
		if p.Quantity < a.thresholdLocked(p.Code) {
			out = append(out, p)
		}
	}
	return out
}

func (a *AlertEngine) thresholdLocked(code int) int {
	if t, ok := a.thresholds[code]; ok {
		return t
	}
	return DefaultThreshold
}

// DetectNewAlerts runs one scan of the edge detector. It returns the
// products that crossed below their threshold since the previous scan
// and the full current under-threshold set, then persists the current
// set as the new baseline.
//
// NOT idempotent: calling twice in a row returns an empty newly-crossed
// slice the second time even if nothing changed in between. Use
// ListUnderThreshold for a repeatable level query.
func (a *AlertEngine) DetectNewAlerts(ctx context.Context) (newlyCrossed, current []Product, err error) {
	products := a.inv.Products()

	a.mu.Lock()
	for _, p := range products {
		if p.Quantity >= a.thresholdLocked(p.Code) {
			continue
		}
		current = append(current, p)
		if !a.notified[p.Code] {
			newlyCrossed = append(newlyCrossed, p)
		}
	}

	a.notified = make(map[int]bool, len(current))
	codes := make([]int, 0, len(current))
	for _, p := range current {
		a.notified[p.Code] = true
		codes = append(codes, p.Code)
	}
	a.mu.Unlock()

	if err := a.state.SaveNotified(ctx, codes); err != nil {
		return newlyCrossed, current, fmt.Errorf("save notified baseline: %w", err)
	}
	return newlyCrossed, current, nil
}

// Alert pairs a low-stock product with its effective threshold, for
// dashboards and reports.
type Alert struct {
	Code      int
	Name      string
	Quantity  int
	Threshold int
}

// CurrentAlerts returns the under-threshold set with effective
// thresholds attached.
func (a *AlertEngine) CurrentAlerts() []Alert {
	low := a.ListUnderThreshold()
	alerts := make([]Alert, len(low))
	for i, p := range low {
		alerts[i] = Alert{
			Code:      p.Code,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Threshold: a.ThresholdFor(p.Code),
		}
	}
	return alerts
}
