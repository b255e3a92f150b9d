package inventory_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovet/stock-engine/inventory"
	"github.com/agrovet/stock-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAlertEngine(t *testing.T) (*inventory.AlertEngine, *inventory.Inventory, *memory.Store) {
	t.Helper()
	inv, st := newTestInventory(t)
	alerts, err := inventory.NewAlertEngine(inv, st, nil)
	require.NoError(t, err)
	return alerts, inv, st
}

func codesOf(products []inventory.Product) []int {
	codes := make([]int, len(products))
	for i, p := range products {
		codes[i] = p.Code
	}
	return codes
}

// =============================================================================
// THRESHOLDS
// =============================================================================

func TestAlertEngine_ThresholdFor_DefaultsWhenUnconfigured(t *testing.T) {
	alerts, _, _ := newTestAlertEngine(t)

	assert.Equal(t, inventory.DefaultThreshold, alerts.ThresholdFor(123))
}

func TestAlertEngine_SetThreshold_PersistsAndApplies(t *testing.T) {
	alerts, _, st := newTestAlertEngine(t)
	ctx := context.Background()

	require.NoError(t, alerts.SetThreshold(ctx, 100, 20))

	assert.Equal(t, 20, alerts.ThresholdFor(100))

	saved, err := st.LoadThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{100: 20}, saved)
}

func TestAlertEngine_SetThreshold_RejectsNegative(t *testing.T) {
	alerts, _, st := newTestAlertEngine(t)
	ctx := context.Background()

	err := alerts.SetThreshold(ctx, 100, -1)

	assert.ErrorIs(t, err, inventory.ErrValidation)
	saved, lerr := st.LoadThresholds(ctx)
	require.NoError(t, lerr)
	assert.Empty(t, saved, "rejected threshold must not be persisted")
}

func TestAlertEngine_ZeroThreshold_NeverAlerts(t *testing.T) {
	// quantity < 0 is impossible, so threshold 0 disables alerts for a product
	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, product(t, 100, "Ivermectin", 0)))
	require.NoError(t, alerts.SetThreshold(ctx, 100, 0))

	assert.Empty(t, alerts.ListUnderThreshold())
}

// =============================================================================
// LEVEL QUERY
// =============================================================================

func TestAlertEngine_ListUnderThreshold_StrictComparison(t *testing.T) {
	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, product(t, 1, "At threshold", 5)))
	require.NoError(t, inv.Add(ctx, product(t, 2, "Below", 4)))
	require.NoError(t, inv.Add(ctx, product(t, 3, "Above", 6)))

	low := alerts.ListUnderThreshold()

	assert.Equal(t, []int{2}, codesOf(low), "quantity == threshold is NOT under threshold")
}

func TestAlertEngine_ListUnderThreshold_MatchesBruteForce(t *testing.T) {
	// Property: for any arrangement of quantities and thresholds, the
	// result is exactly {p : p.quantity < thresholdFor(p.code)} in
	// catalog order.

	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		alerts, inv, _ := newTestAlertEngine(t)
		ctx := context.Background()

		n := 1 + rng.Intn(20)
		for code := 1; code <= n; code++ {
			require.NoError(t, inv.Add(ctx, product(t, code, fmt.Sprintf("P%d", code), rng.Intn(15))))
			if rng.Intn(2) == 0 {
				require.NoError(t, alerts.SetThreshold(ctx, code, rng.Intn(12)))
			}
		}

		want := []int{}
		for _, p := range inv.Products() {
			if p.Quantity < alerts.ThresholdFor(p.Code) {
				want = append(want, p.Code)
			}
		}

		assert.Equal(t, want, codesOf(alerts.ListUnderThreshold()), "trial %d", trial)
	}
}

// =============================================================================
// EDGE DETECTOR
// =============================================================================

func TestAlertEngine_DetectNewAlerts_SecondCallReportsNothingNew(t *testing.T) {
	// GIVEN: One product under threshold
	// WHEN: DetectNewAlerts runs twice with no intervening mutation
	// THEN: The second run returns an empty newly-crossed set; the scan
	//       is a one-shot edge detector, not a level query

	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()
	require.NoError(t, inv.Add(ctx, product(t, 100, "Ivermectin", 2)))

	newly, current, err := alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, codesOf(newly))
	assert.Equal(t, []int{100}, codesOf(current))

	newly, current, err = alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, newly, "already-notified products are not new")
	assert.Equal(t, []int{100}, codesOf(current), "the level set is unchanged")
}

func TestAlertEngine_DetectNewAlerts_ScenarioSellThroughThreshold(t *testing.T) {
	// Product 100 starts at 10 and sells through the default threshold of 5.

	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()
	require.NoError(t, inv.Add(ctx, product(t, 100, "X", 10)))

	assert.Empty(t, alerts.ListUnderThreshold())

	_, err := inv.UpdateStock(ctx, 100, 3, "sold")
	require.NoError(t, err)

	assert.Equal(t, []int{100}, codesOf(alerts.ListUnderThreshold()))

	newly, _, err := alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, codesOf(newly))

	newly, _, err = alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, newly)
}

func TestAlertEngine_DetectNewAlerts_RecoveryIsSilentAndRearms(t *testing.T) {
	// A product that recovers above threshold generates no notification,
	// but crossing below again is reported as new.

	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()
	require.NoError(t, inv.Add(ctx, product(t, 100, "X", 2)))

	newly, _, err := alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, newly, 1)

	// Replenish above threshold
	_, err = inv.UpdateStock(ctx, 100, 50, "restock")
	require.NoError(t, err)

	newly, current, err := alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, newly, "recovery is silent")
	assert.Empty(t, current)

	// Drop below again: reported as new again
	_, err = inv.UpdateStock(ctx, 100, 1, "sold")
	require.NoError(t, err)

	newly, _, err = alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, codesOf(newly))
}

func TestAlertEngine_BaselineSurvivesRestart(t *testing.T) {
	// GIVEN: A scan has notified product 100 and persisted the baseline
	// WHEN: A fresh engine is built over the same state backend
	// THEN: The product is not reported as new again

	alerts, inv, st := newTestAlertEngine(t)
	ctx := context.Background()
	require.NoError(t, inv.Add(ctx, product(t, 100, "X", 2)))

	_, _, err := alerts.DetectNewAlerts(ctx)
	require.NoError(t, err)

	rebuilt, err := inventory.NewAlertEngine(inv, st, nil)
	require.NoError(t, err)

	newly, current, err := rebuilt.DetectNewAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Equal(t, []int{100}, codesOf(current))
}

func TestAlertEngine_CurrentAlerts_AttachesEffectiveThresholds(t *testing.T) {
	alerts, inv, _ := newTestAlertEngine(t)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, product(t, 1, "Default threshold", 3)))
	require.NoError(t, inv.Add(ctx, product(t, 2, "Custom threshold", 8)))
	require.NoError(t, alerts.SetThreshold(ctx, 2, 10))

	got := alerts.CurrentAlerts()
	require.Len(t, got, 2)
	assert.Equal(t, inventory.Alert{Code: 1, Name: "Default threshold", Quantity: 3, Threshold: 5}, got[0])
	assert.Equal(t, inventory.Alert{Code: 2, Name: "Custom threshold", Quantity: 8, Threshold: 10}, got[1])
}
