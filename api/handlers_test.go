package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovet/stock-engine/api"
	"github.com/agrovet/stock-engine/inventory"
	"github.com/agrovet/stock-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *inventory.Inventory) {
	t.Helper()

	st := memory.New()
	inv := inventory.NewInventory(st, st, nil)
	require.NoError(t, inv.Load(context.Background()))

	alerts, err := inventory.NewAlertEngine(inv, st, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(inv, alerts, nil)))
	t.Cleanup(srv.Close)
	return srv, inv
}

func addProduct(t *testing.T, inv *inventory.Inventory, code int, name string, quantity int) {
	t.Helper()
	p, err := inventory.NewProduct(code, name, "Antiparasitic", "", decimal.NewFromInt(10), quantity, "N/A")
	require.NoError(t, err)
	require.NoError(t, inv.Add(context.Background(), p))
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// =============================================================================
// PRODUCT ENDPOINTS
// =============================================================================

func TestAPI_CreateAndGetProduct(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", api.CreateProductRequest{
		Code: 100, Name: "Ivermectin", Category: "Antiparasitic",
		Price: "25.5", Quantity: 40, ExpiryDate: "12/05/2027",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/products/100")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[api.ProductDTO](t, resp)
	assert.Equal(t, "Ivermectin", got.Name)
	assert.Equal(t, "25.5", got.Price)
	assert.True(t, got.Available)
}

func TestAPI_CreateProduct_DuplicateCodeIsConflict(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 100, "Ivermectin", 10)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", api.CreateProductRequest{
		Code: 100, Name: "Another", Price: "1", Quantity: 1,
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[api.ErrorResponse](t, resp)
	assert.NotEmpty(t, body.Error)
}

func TestAPI_CreateProduct_NegativePriceIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", api.CreateProductRequest{
		Code: 100, Name: "X", Price: "-3", Quantity: 1,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetProduct_UnknownCodeIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/products/999")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListProducts_Filters(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 1, "Ivermectin", 10)
	addProduct(t, inv, 2, "Fenbendazole", 4)

	resp, err := http.Get(srv.URL + "/api/products?name=ivermectin")
	require.NoError(t, err)
	got := decode[[]api.ProductDTO](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Code)

	resp, err = http.Get(srv.URL + "/api/products?category=ANTIPARASITIC")
	require.NoError(t, err)
	assert.Len(t, decode[[]api.ProductDTO](t, resp), 2)
}

// =============================================================================
// STOCK AND LEDGER ENDPOINTS
// =============================================================================

func TestAPI_UpdateStock_AppliesAndJournals(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 100, "Ivermectin", 10)

	qty := 3
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products/100/stock",
		api.UpdateStockRequest{Quantity: &qty, Reason: "sold"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[api.ProductDTO](t, resp)
	assert.Equal(t, 3, got.Quantity)

	resp, err := http.Get(srv.URL + "/api/ledger")
	require.NoError(t, err)
	entries := decode[[]api.StockEntryDTO](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].PreviousQuantity)
	assert.Equal(t, 3, entries[0].NewQuantity)
	assert.Equal(t, "sold", entries[0].Reason)
}

func TestAPI_UpdateStock_Validation(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 100, "Ivermectin", 10)

	neg := -1
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products/100/stock",
		api.UpdateStockRequest{Quantity: &neg, Reason: "typo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/products/100/stock",
		api.UpdateStockRequest{Reason: "missing quantity"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	qty := 5
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/products/999/stock",
		api.UpdateStockRequest{Quantity: &qty, Reason: "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// ALERT ENDPOINTS
// =============================================================================

func TestAPI_AlertScan_IsOneShot(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 100, "Ivermectin", 2)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/alerts/scan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[api.ScanResponse](t, resp)
	require.Len(t, first.New, 1)
	assert.Equal(t, 100, first.New[0].Code)
	assert.Equal(t, 5, first.New[0].Threshold)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/alerts/scan", nil)
	second := decode[api.ScanResponse](t, resp)
	assert.Empty(t, second.New, "second scan with no mutation reports nothing new")
	assert.Len(t, second.Current, 1)
}

func TestAPI_Thresholds(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/alerts/thresholds/100")
	require.NoError(t, err)
	got := decode[api.ThresholdDTO](t, resp)
	assert.Equal(t, 5, got.Threshold, "unconfigured products use the default")

	v := 20
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/alerts/thresholds/100",
		api.SetThresholdRequest{Threshold: &v})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/alerts/thresholds/100")
	require.NoError(t, err)
	assert.Equal(t, 20, decode[api.ThresholdDTO](t, resp).Threshold)

	neg := -2
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/alerts/thresholds/100",
		api.SetThresholdRequest{Threshold: &neg})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListAlerts(t *testing.T) {
	srv, inv := newTestServer(t)
	addProduct(t, inv, 1, "Low", 2)
	addProduct(t, inv, 2, "Fine", 50)

	resp, err := http.Get(srv.URL + "/api/alerts")
	require.NoError(t, err)

	got := decode[[]api.AlertDTO](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, api.AlertDTO{Code: 1, Name: "Low", Quantity: 2, Threshold: 5}, got[0])
}
