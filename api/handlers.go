/*
handlers.go - HTTP API handlers for the stock engine

PURPOSE:
  Exposes the inventory core via REST. Handles HTTP request/response and
  JSON serialization, delegating all decisions to the domain.

ENDPOINTS:
  Products:
    GET    /api/products                 List (optional ?name= / ?category=)
    POST   /api/products                 Register product
    GET    /api/products/{code}          Lookup by code
    POST   /api/products/{code}/stock    Update stock quantity

  Ledger:
    GET    /api/ledger                   Full stock change journal

  Alerts:
    GET    /api/alerts                   Products under threshold
    POST   /api/alerts/scan              Run the edge detector
    GET    /api/alerts/thresholds/{code} Effective threshold
    PUT    /api/alerts/thresholds/{code} Configure threshold

ERROR HANDLING:
  Domain errors map to HTTP status via errors.Is:
  - 400: validation (negative quantity/threshold/price, bad input)
  - 404: unknown product code
  - 409: duplicate product code
  - 500: persistence and everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/agrovet/stock-engine/inventory"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Inventory *inventory.Inventory
	Alerts    *inventory.AlertEngine
	Log       *zap.Logger
}

// NewHandler creates a handler over the inventory core. A nil logger is
// replaced with a no-op logger.
func NewHandler(inv *inventory.Inventory, alerts *inventory.AlertEngine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Inventory: inv, Alerts: alerts, Log: log}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns the catalog, optionally filtered by ?name= or
// ?category= (exact, case-insensitive).
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []inventory.Product
	switch {
	case r.URL.Query().Get("name") != "":
		products = h.Inventory.FindByName(r.URL.Query().Get("name"))
	case r.URL.Query().Get("category") != "":
		products = h.Inventory.FindByCategory(r.URL.Query().Get("category"))
	default:
		products = h.Inventory.Products()
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns a single product by code.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	p, err := h.Inventory.FindByCode(code)
	if err != nil {
		writeDomainError(w, "Product lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// CreateProduct registers a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	price := decimal.Zero
	if req.Price != "" {
		var err error
		price, err = decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid price", err)
			return
		}
	}

	p, err := inventory.NewProduct(req.Code, req.Name, req.Category,
		req.Description, price, req.Quantity, req.ExpiryDate)
	if err != nil {
		writeDomainError(w, "Invalid product", err)
		return
	}

	if err := h.Inventory.Add(r.Context(), p); err != nil {
		writeDomainError(w, "Failed to register product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// UpdateStock sets a product's quantity, journaling the change.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "Field 'quantity' is required", nil)
		return
	}

	p, err := h.Inventory.UpdateStock(r.Context(), code, *req.Quantity, req.Reason)
	if err != nil {
		writeDomainError(w, "Stock update failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedger returns the full stock change journal in append order.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Inventory.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read stock history", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockEntryDTOs(entries))
}

// =============================================================================
// ALERT HANDLERS
// =============================================================================

// ListAlerts returns the products currently under their threshold.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAlertDTOs(h.Alerts.CurrentAlerts()))
}

// ScanAlerts runs one edge-detector scan. Each call moves the baseline:
// an immediate second scan reports no new alerts.
func (h *Handler) ScanAlerts(w http.ResponseWriter, r *http.Request) {
	newly, current, err := h.Alerts.DetectNewAlerts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Alert scan failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{
		New:     h.toAlertDTOsFromProducts(newly),
		Current: h.toAlertDTOsFromProducts(current),
	})
}

// GetThreshold returns the effective threshold for a product.
func (h *Handler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ThresholdDTO{Code: code, Threshold: h.Alerts.ThresholdFor(code)})
}

// SetThreshold configures the minimum quantity for a product.
func (h *Handler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	var req SetThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Threshold == nil {
		writeError(w, http.StatusBadRequest, "Field 'threshold' is required", nil)
		return
	}

	if err := h.Alerts.SetThreshold(r.Context(), code, *req.Threshold); err != nil {
		writeDomainError(w, "Failed to set threshold", err)
		return
	}
	writeJSON(w, http.StatusOK, ThresholdDTO{Code: code, Threshold: *req.Threshold})
}

// =============================================================================
// HELPERS
// =============================================================================

func codeParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Product code must be an integer", err)
		return 0, false
	}
	return code, true
}

func (h *Handler) toAlertDTOsFromProducts(products []inventory.Product) []AlertDTO {
	dtos := make([]AlertDTO, len(products))
	for i, p := range products {
		dtos[i] = AlertDTO{
			Code:      p.Code,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Threshold: h.Alerts.ThresholdFor(p.Code),
		}
	}
	return dtos
}

func toAlertDTOs(alerts []inventory.Alert) []AlertDTO {
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{Code: a.Code, Name: a.Name, Quantity: a.Quantity, Threshold: a.Threshold}
	}
	return dtos
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, inventory.ErrDuplicateCode):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
